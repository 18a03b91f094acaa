package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client, err := Connect(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()
}

func TestConnectErrors(t *testing.T) {
	if _, err := Connect(context.Background(), "", "", 0); err == nil {
		t.Fatalf("expected error for empty address")
	}

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()
	if _, err := Connect(context.Background(), addr, "", 0); err == nil {
		t.Fatalf("expected error for closed server")
	}
}
