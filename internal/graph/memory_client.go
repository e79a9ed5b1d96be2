package graph

import (
	"context"
	"sync"
)

// MemoryClient is an in-memory implementation of the Client interface used for
// unit testing repository logic without a running graph database. It records
// every executed statement and replays canned results keyed by the exact
// cypher text, so a test can stub the response of one statement without
// caring about the order the repository issues them in.
type MemoryClient struct {
	mu           sync.Mutex
	writeCalls   []ExecutedQuery
	readCalls    []ExecutedQuery
	writeResults map[string][]Result
	readResults  map[string][]Result
	err          error
	connectivity error
}

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// NewMemoryClient instantiates the in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		writeResults: make(map[string][]Result),
		readResults:  make(map[string][]Result),
	}
}

// WithError configures the client to return the provided error for subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// StubWrite queues a result returned by the next ExecuteWrite of the given statement.
func (m *MemoryClient) StubWrite(cypher string, res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeResults[cypher] = append(m.writeResults[cypher], res)
}

// StubRead queues a result returned by the next ExecuteRead of the given statement.
func (m *MemoryClient) StubRead(cypher string, res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readResults[cypher] = append(m.readResults[cypher], res)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}

	m.writeCalls = append(m.writeCalls, ExecutedQuery{
		Query:  cypher,
		Params: cloneMap(params),
	})

	return m.popLocked(m.writeResults, cypher), nil
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}

	m.readCalls = append(m.readCalls, ExecutedQuery{
		Query:  cypher,
		Params: cloneMap(params),
	})

	return m.popLocked(m.readResults, cypher), nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writeCalls...)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.readCalls...)
}

func (m *MemoryClient) popLocked(results map[string][]Result, cypher string) Result {
	queue := results[cypher]
	if len(queue) == 0 {
		return Result{}
	}
	res := queue[0]
	results[cypher] = queue[1:]
	return res
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
