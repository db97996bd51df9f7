package cast_test

import (
	"context"
	"errors"
	"testing"

	"hearth/internal/services/cast"
)

type stubSession struct {
	loadedPath  string
	contentType string
	detach      bool
	closed      bool
	stopMedia   bool
	loadErr     error
}

func (s *stubSession) Load(path string, startTime int, contentType string, transcode, detach, forceDetach bool) error {
	s.loadedPath = path
	s.contentType = contentType
	s.detach = detach
	return s.loadErr
}

func (s *stubSession) Close(stopMedia bool) error {
	s.closed = true
	s.stopMedia = stopMedia
	return nil
}

func TestPlayLoadsMediaAndDetaches(t *testing.T) {
	session := &stubSession{}
	var dialedAddr string
	var dialedPort int
	client, err := cast.New("192.168.1.20", 8009, cast.WithDialer(func(_ context.Context, addr string, port int) (cast.Session, error) {
		dialedAddr = addr
		dialedPort = port
		return session, nil
	}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Play(context.Background(), "http://media.local/voice.mp3", "audio/mp3"); err != nil {
		t.Fatalf("Play returned error: %v", err)
	}

	if dialedAddr != "192.168.1.20" || dialedPort != 8009 {
		t.Fatalf("dialed %s:%d", dialedAddr, dialedPort)
	}
	if session.loadedPath != "http://media.local/voice.mp3" {
		t.Fatalf("loaded %q", session.loadedPath)
	}
	if session.contentType != "audio/mp3" {
		t.Fatalf("content type %q", session.contentType)
	}
	if !session.detach {
		t.Fatal("expected detached playback")
	}
	if !session.closed || session.stopMedia {
		t.Fatalf("session should close without stopping media: closed=%v stop=%v", session.closed, session.stopMedia)
	}
}

func TestPlayPropagatesDialFailure(t *testing.T) {
	client, err := cast.New("192.168.1.20", 0, cast.WithDialer(func(context.Context, string, int) (cast.Session, error) {
		return nil, errors.New("connection refused")
	}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Play(context.Background(), "http://media.local/voice.mp3", "audio/mp3"); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestPlayPropagatesLoadFailure(t *testing.T) {
	session := &stubSession{loadErr: errors.New("load failed")}
	client, err := cast.New("192.168.1.20", 8009, cast.WithDialer(func(context.Context, string, int) (cast.Session, error) {
		return session, nil
	}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := client.Play(context.Background(), "http://media.local/voice.mp3", "audio/mp3"); err == nil {
		t.Fatal("expected load error")
	}
	if !session.closed {
		t.Fatal("session should close even after a failed load")
	}
}

func TestNewRequiresAddress(t *testing.T) {
	if _, err := cast.New("  ", 8009); err == nil {
		t.Fatal("expected error for empty address")
	}
}
