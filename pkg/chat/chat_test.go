package chat_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.uber.org/goleak"

	"github.com/goliatone/go-pawhealth/pkg/chat"
	"github.com/goliatone/go-pawhealth/pkg/client"
)

type scriptedAssistant struct {
	mu       sync.Mutex
	requests []client.ChatRequest
	fail     map[string]error
}

func (a *scriptedAssistant) Chat(_ context.Context, req client.ChatRequest) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, req)
	if err := a.fail[req.Message]; err != nil {
		return "", err
	}
	return "re: " + req.Message, nil
}

func TestSend_ConfirmsAndAppendsReply(t *testing.T) {
	assistant := &scriptedAssistant{}
	conv := chat.New(assistant, chat.WithDog("dog-1"))
	if _, err := uuid.Parse(conv.ID()); err != nil {
		t.Fatalf("conversation id is not a uuid: %q", conv.ID())
	}

	reply, err := conv.Send(context.Background(), "  hello ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Content != "re: hello" || reply.Role != client.RoleAssistant {
		t.Fatalf("unexpected reply %+v", reply)
	}

	got := conv.Messages()
	if len(got) != 2 || got[0].Status != chat.Confirmed || got[0].Content != "hello" {
		t.Fatalf("unexpected transcript %+v", got)
	}
	req := assistant.requests[0]
	if req.DogID != "dog-1" || req.ConversationID != conv.ID() || len(req.History) != 0 {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestSend_HistoryWindow(t *testing.T) {
	assistant := &scriptedAssistant{}
	conv := chat.New(assistant)
	for i := 1; i <= 3; i++ {
		if _, err := conv.Send(context.Background(), fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	last := assistant.requests[len(assistant.requests)-1]
	want := []client.HistoryItem{
		{Role: client.RoleUser, Content: "m1"},
		{Role: client.RoleAssistant, Content: "re: m1"},
		{Role: client.RoleUser, Content: "m2"},
		{Role: client.RoleAssistant, Content: "re: m2"},
	}
	if diff := cmp.Diff(want, last.History); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestSend_RollsBackOnFailure(t *testing.T) {
	assistant := &scriptedAssistant{fail: map[string]error{"boom": client.ErrTransport}}
	conv := chat.New(assistant)
	_, _ = conv.Send(context.Background(), "hi")

	failed, err := conv.Send(context.Background(), "boom")
	if !errors.Is(err, client.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if failed.Status != chat.Failed || failed.Content != "boom" {
		t.Fatalf("unexpected failed message %+v", failed)
	}
	if got := conv.Messages(); len(got) != 2 {
		t.Fatalf("failed message left in transcript: %+v", got)
	}

	_, _ = conv.Send(context.Background(), "again")
	last := assistant.requests[len(assistant.requests)-1]
	for _, item := range last.History {
		if item.Content == "boom" {
			t.Fatalf("failed message leaked into history: %+v", last.History)
		}
	}
}

func TestSend_RejectsEmpty(t *testing.T) {
	assistant := &scriptedAssistant{}
	conv := chat.New(assistant)
	if _, err := conv.Send(context.Background(), "   "); !errors.Is(err, chat.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if len(assistant.requests) != 0 {
		t.Fatalf("empty message reached the assistant")
	}
}

func TestSend_ConcurrentSendsAreSerialised(t *testing.T) {
	defer goleak.VerifyNone(t)
	assistant := &scriptedAssistant{}
	conv := chat.New(assistant)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = conv.Send(context.Background(), fmt.Sprintf("q%d", i))
		}()
	}
	wg.Wait()

	got := conv.Messages()
	if len(got) != 16 {
		t.Fatalf("transcript has %d messages, want 16", len(got))
	}
	for i := 0; i < len(got); i += 2 {
		if got[i].Role != client.RoleUser || got[i+1].Content != "re: "+got[i].Content {
			t.Fatalf("turns interleaved at %d: %+v %+v", i, got[i], got[i+1])
		}
	}
}
