package network

import (
	"bytes"
	"encoding/binary"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/gridroute/internal/grid"
	"github.com/amalg/gridroute/internal/search"
)

var testMatrix = [][]int{
	{1, 1, 1, 1},
	{1, 0, 0, 1},
	{1, 1, 0, 1},
	{0, 1, 1, 1},
}

var testPacing = Pacing{VisitedDelay: 40 * time.Millisecond, PathDelay: 20 * time.Millisecond}

func startServer(t *testing.T) (*Server, *logtest.Hook) {
	t.Helper()
	return startServerWith(t, testMatrix, func(*Server) {})
}

// startServerWith serves matrix; setup runs before Start.
func startServerWith(t *testing.T, matrix [][]int, setup func(*Server)) (*Server, *logtest.Hook) {
	t.Helper()
	g, err := grid.Build(matrix)
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	s := NewServer("127.0.0.1:0", search.NewPlanner(g), testPacing, logger)
	setup(s)
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)
	return s, hook
}

func openMatrix(w, h int) [][]int {
	m := make([][]int, h)
	for y := range m {
		m[y] = make([]int, w)
		for x := range m[y] {
			m[y][x] = 1
		}
	}
	return m
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	req := SearchMsg{RequestID: 7, Origin: grid.Point{X: 1, Y: 2}, Target: grid.Point{X: 3, Y: 4}}
	require.NoError(t, Encode(&buf, MsgSearch, req))

	// Length header matches the body
	length := binary.BigEndian.Uint32(buf.Bytes()[:4])
	assert.Equal(t, buf.Len()-4, int(length))

	env, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, MsgSearch, env.Type)

	var got SearchMsg
	require.NoError(t, DecodePayload(env, &got))
	assert.Equal(t, req, got)
}

func TestEncodeTooLarge(t *testing.T) {
	var buf bytes.Buffer
	err := encodeLimit(&buf, MsgError, ErrorMsg{Message: strings.Repeat("x", 100)}, 64)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
	assert.Zero(t, buf.Len(), "nothing may be written for an oversized frame")
}

func TestDecodeErrors(t *testing.T) {
	t.Run("too large", func(t *testing.T) {
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, uint32(MaxMessageSize+1))
		_, err := Decode(&buf)
		assert.ErrorContains(t, err, "too large")
	})

	t.Run("too large wraps sentinel", func(t *testing.T) {
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, uint32(MaxMessageSize+1))
		_, err := Decode(&buf)
		assert.ErrorIs(t, err, ErrMessageTooLarge)
	})

	t.Run("truncated body", func(t *testing.T) {
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, uint32(10))
		buf.WriteString("{}")
		_, err := Decode(&buf)
		assert.ErrorContains(t, err, "read body")
	})

	t.Run("bad json", func(t *testing.T) {
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, uint32(3))
		buf.WriteString("{{{")
		_, err := Decode(&buf)
		assert.ErrorContains(t, err, "unmarshal envelope")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Decode(&bytes.Buffer{})
		assert.ErrorContains(t, err, "read length")
	})
}

func TestClientServerSearch(t *testing.T) {
	s, hook := startServer(t)

	client, err := NewClient(s.Addr().String(), "tester")
	require.NoError(t, err)
	defer client.Close()

	assert.NotEmpty(t, client.SessionID())
	assert.Equal(t, testMatrix, client.Grid().Matrix())
	assert.Equal(t, testPacing, client.Pacing())

	origin, target := grid.Point{X: 0, Y: 2}, grid.Point{X: 3, Y: 3}
	got, err := client.Search(origin, target)
	require.NoError(t, err)

	want, err := search.Search(client.Grid(), origin, target)
	require.NoError(t, err)
	require.True(t, want.Found)

	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(search.Result{}, "Scores")); diff != "" {
		t.Errorf("remote result mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, got.Scores)

	assert.Eventually(t, func() bool { return s.Sessions() == 1 }, time.Second, 10*time.Millisecond)

	var opened bool
	for _, e := range hook.AllEntries() {
		if e.Message == "session opened" {
			opened = true
			assert.Equal(t, "tester", e.Data["name"])
			assert.Equal(t, client.SessionID(), e.Data["session"])
		}
	}
	assert.True(t, opened, "expected a session opened log entry")
}

func TestClientServerNoRoute(t *testing.T) {
	s, _ := startServer(t)

	client, err := NewClient(s.Addr().String(), "tester")
	require.NoError(t, err)
	defer client.Close()

	// (0,3) is blocked
	res, err := client.Search(grid.Point{X: 0, Y: 0}, grid.Point{X: 0, Y: 3})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.NotEmpty(t, res.Visited)
}

func TestClientServerOutOfBounds(t *testing.T) {
	s, _ := startServer(t)

	client, err := NewClient(s.Addr().String(), "tester")
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Search(grid.Point{X: 0, Y: 0}, grid.Point{X: 9, Y: 9})
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, uint64(1), remote.RequestID)
	assert.Contains(t, remote.Message, "out of bounds")

	// The session survives a rejected request
	res, err := client.Search(grid.Point{X: 0, Y: 0}, grid.Point{X: 3, Y: 0})
	require.NoError(t, err)
	assert.True(t, res.Found)
}

func TestClientServerLargeGrid(t *testing.T) {
	matrix := openMatrix(200, 200)
	s, _ := startServerWith(t, matrix, func(*Server) {})

	client, err := NewClient(s.Addr().String(), "tester")
	require.NoError(t, err)
	defer client.Close()

	origin, target := grid.Point{X: 0, Y: 0}, grid.Point{X: 199, Y: 199}
	got, err := client.Search(origin, target)
	require.NoError(t, err)

	want, err := search.Search(client.Grid(), origin, target)
	require.NoError(t, err)
	require.True(t, got.Found)
	assert.Len(t, got.Visited, len(want.Visited))
	assert.Equal(t, want.Path, got.Path)
}

func TestServerOversizedResult(t *testing.T) {
	s, hook := startServerWith(t, testMatrix, func(s *Server) { s.maxFrame = 64 })

	client, err := NewClient(s.Addr().String(), "tester")
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Search(grid.Point{X: 0, Y: 0}, grid.Point{X: 3, Y: 3})
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, uint64(1), remote.RequestID)
	assert.Contains(t, remote.Message, "message too large")

	// Same session answers the next request
	_, err = client.Search(grid.Point{X: 3, Y: 0}, grid.Point{X: 3, Y: 3})
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, uint64(2), remote.RequestID)
	assert.Equal(t, 1, s.Sessions())

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "result does not fit in one frame" {
			warned = true
		}
	}
	assert.True(t, warned, "expected an oversized result warning")
}

func TestClientConcurrentSearches(t *testing.T) {
	s, _ := startServer(t)

	client, err := NewClient(s.Addr().String(), "tester")
	require.NoError(t, err)
	defer client.Close()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Search(grid.Point{X: 0, Y: 0}, grid.Point{X: 3, Y: 3})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "search %d", i)
	}
}

func TestServerRejectsMissingHello(t *testing.T) {
	s, _ := startServer(t)

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, Encode(conn, MsgSearch, SearchMsg{RequestID: 1}))
	env, err := Decode(conn)
	require.NoError(t, err)
	require.Equal(t, MsgError, env.Type)

	var msg ErrorMsg
	require.NoError(t, DecodePayload(env, &msg))
	assert.True(t, strings.Contains(msg.Message, "hello"))
}

func TestServerUnknownMessage(t *testing.T) {
	s, _ := startServer(t)

	client, err := NewClient(s.Addr().String(), "tester")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, Encode(client.conn, MsgType("dance"), struct{}{}))
	env, err := Decode(client.conn)
	require.NoError(t, err)
	assert.Equal(t, MsgError, env.Type)
}

func TestServerStopClosesSessions(t *testing.T) {
	g, err := grid.Build(testMatrix)
	require.NoError(t, err)
	logger, _ := logtest.NewNullLogger()

	s := NewServer("127.0.0.1:0", search.NewPlanner(g), Pacing{}, logger)
	require.NoError(t, s.Start())

	client, err := NewClient(s.Addr().String(), "tester")
	require.NoError(t, err)
	defer client.Close()

	// A connection that never says hello must not block Stop
	idle, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer idle.Close()

	s.Stop()
	s.Stop()

	_, err = client.Search(grid.Point{X: 0, Y: 0}, grid.Point{X: 3, Y: 3})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Sessions())

	_, err = NewClient(s.Addr().String(), "late")
	assert.Error(t, err)
}
