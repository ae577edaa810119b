package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
	}
}

// Subscribe registers a buffered channel and returns it with its cancel func.
func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast sends msg to every subscriber without blocking.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message")
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
