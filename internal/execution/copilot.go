package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotGenerator answers prompts through the GitHub Copilot SDK, one
// session per call. The final assistant message is the response.
type CopilotGenerator struct {
	client    copilotClient
	remoteIDs map[string]string

	startOnce sync.Once
	startErr  error
}

// CopilotOptions configures a CopilotGenerator.
type CopilotOptions struct {
	// RemoteIDs maps registry model names onto Copilot model IDs.
	RemoteIDs map[string]string

	// NewCopilotClient replaces the SDK client, for tests.
	NewCopilotClient func(clientOptions *copilot.ClientOptions) copilotClient
}

// NewCopilotGenerator creates a generator. The client starts lazily on the
// first Generate call.
func NewCopilotGenerator(options *CopilotOptions) *CopilotGenerator {
	copilotOptions := &copilot.ClientOptions{
		LogLevel:  "error",
		AutoStart: copilot.Bool(false),
	}

	g := &CopilotGenerator{remoteIDs: map[string]string{}}
	if options == nil || options.NewCopilotClient == nil {
		g.client = newCopilotClient(copilotOptions)
	} else {
		g.client = options.NewCopilotClient(copilotOptions)
	}
	if options != nil {
		for k, v := range options.RemoteIDs {
			g.remoteIDs[k] = v
		}
	}
	return g
}

// Generate implements Generator.
func (g *CopilotGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	g.startOnce.Do(func() {
		// the SDK's own autostart races when sessions open from several goroutines
		g.startErr = g.client.Start(ctx)
	})
	if g.startErr != nil {
		return "", inferenceError(model, fmt.Errorf("copilot failed to start: %w", g.startErr))
	}

	remote := model
	if id, ok := g.remoteIDs[model]; ok && id != "" {
		remote = id
	}

	session, err := g.client.CreateSession(ctx, &copilot.SessionConfig{
		Model:               remote,
		OnPermissionRequest: allowAllTools,
	})
	if err != nil {
		return "", inferenceError(model, fmt.Errorf("failed to create session: %w", err))
	}

	collector := newMessageCollector()
	unsubscribe := session.On(collector.On)
	defer unsubscribe()

	final, err := session.SendAndWait(ctx, copilot.MessageOptions{Prompt: prompt})
	if err != nil {
		return "", inferenceError(model, err)
	}
	if msg := collector.ErrorMessage(); msg != "" {
		return "", inferenceError(model, errors.New(msg))
	}

	text := collector.Last()
	if text == "" && final != nil && final.Data.Content != nil {
		text = *final.Data.Content
	}
	return checkResponse(model, text)
}

// Shutdown stops the Copilot client.
func (g *CopilotGenerator) Shutdown(ctx context.Context) error {
	if err := g.client.Stop(); err != nil {
		slog.Info("failed to stop client", "error", err)
	}
	return nil
}

func allowAllTools(request copilot.PermissionRequest, invocation copilot.PermissionInvocation) (copilot.PermissionRequestResult, error) {
	// value for 'Kind' came from the permissions_test.go in the Copilot SDK.
	return copilot.PermissionRequestResult{Kind: "approved"}, nil
}

// messageCollector gathers assistant messages and session errors.
type messageCollector struct {
	mu       sync.Mutex
	messages []string
	errorMsg string
}

func newMessageCollector() *messageCollector {
	return &messageCollector{}
}

// On is passed to [copilot.Session.On].
func (c *messageCollector) On(event copilot.SessionEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch event.Type {
	case copilot.AssistantMessage:
		if event.Data.Content != nil {
			c.messages = append(c.messages, *event.Data.Content)
		}
	case copilot.SessionError:
		if event.Data.Message == nil || *event.Data.Message == "" {
			c.errorMsg = "session failed with unknown error"
		} else {
			c.errorMsg = *event.Data.Message
		}
	}
}

// Last returns the final non-blank assistant message.
func (c *messageCollector) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if strings.TrimSpace(c.messages[i]) != "" {
			return c.messages[i]
		}
	}
	return ""
}

// ErrorMessage returns the session error, if any.
func (c *messageCollector) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorMsg
}
