package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStreamContextEndsOnShutdown(t *testing.T) {
	shutdown, stopStreams := context.WithCancel(context.Background())
	base := WithShutdown(context.Background(), shutdown)

	request, endRequest := context.WithCancel(base)
	defer endRequest()
	stream, cancel := StreamContext(request)
	defer cancel()

	stopStreams()
	select {
	case <-stream.Done():
	case <-time.After(time.Second):
		t.Fatal("expected stream to end on shutdown")
	}
	require.NoError(t, request.Err(), "the request itself stays alive")
}

func TestStreamContextFollowsRequest(t *testing.T) {
	request, endRequest := context.WithCancel(context.Background())
	stream, cancel := StreamContext(request)
	defer cancel()

	endRequest()
	select {
	case <-stream.Done():
	case <-time.After(time.Second):
		t.Fatal("expected stream to end with the request")
	}
}
