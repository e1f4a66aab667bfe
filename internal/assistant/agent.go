package assistant

import (
	"context"
	"fmt"

	"github.com/reinhart/codeAgent/internal/logger"
)

// StatusUpdate is a real-time progress event for the UI. Diff carries
// a patch preview when an edit tool produced one.
type StatusUpdate struct {
	Message string
	Diff    string
}

// Agent drives the conversation between the user, the model endpoint,
// and the tools. It exclusively owns its Session for the lifetime of
// the conversation.
type Agent struct {
	provider   LLMProvider
	registry   *ToolRegistry
	dispatcher *Dispatcher
	session    *Session
	system     string
	maxTurns   int
	updates    chan StatusUpdate
}

// NewAgent creates an agent with a fresh session.
func NewAgent(provider LLMProvider, registry *ToolRegistry, systemPrompt string, maxTurns int) *Agent {
	if maxTurns <= 0 {
		maxTurns = 25
	}
	return &Agent{
		provider:   provider,
		registry:   registry,
		dispatcher: NewDispatcher(registry),
		session:    NewSession(),
		system:     systemPrompt,
		maxTurns:   maxTurns,
		updates:    make(chan StatusUpdate, 10),
	}
}

// Updates returns the channel of progress events.
func (a *Agent) Updates() <-chan StatusUpdate {
	return a.updates
}

// Session exposes the transcript, for inspection only.
func (a *Agent) Session() *Session {
	return a.session
}

func (a *Agent) sendUpdate(msg, diff string) {
	select {
	case a.updates <- StatusUpdate{Message: msg, Diff: diff}:
	default:
		// Drop if nobody is listening.
	}
}

// ProcessMessage handles one user utterance and runs the request /
// dispatch cycle until the model produces a turn with no tool calls.
// The returned string is that turn's user-visible text.
//
// On a transport failure nothing from the failed exchange is recorded,
// so the transcript stays consistent and the user can simply retry.
func (a *Agent) ProcessMessage(ctx context.Context, input string) (string, error) {
	logger.Info("session %s: processing user input (%d bytes)", a.session.ID, len(input))
	a.sendUpdate("Analysing request...", "")

	if a.session.Len() == 0 && a.system != "" {
		a.session.Append(RoleSystem, a.system)
	}
	a.session.Append(RoleUser, input)

	for i := 0; i < a.maxTurns; i++ {
		logger.Debug("agent loop turn %d", i+1)
		a.sendUpdate(fmt.Sprintf("Thinking (turn %d)...", i+1), "")

		reply, err := a.provider.Chat(ctx, a.session.Turns())
		if err != nil {
			logger.Info("model endpoint error: %v", err)
			if ctx.Err() == context.DeadlineExceeded {
				a.sendUpdate("Request timed out", "")
				return "", fmt.Errorf("model request timed out; the endpoint may be slow or unavailable")
			}
			if ctx.Err() == context.Canceled {
				a.sendUpdate("Request cancelled", "")
				return "", fmt.Errorf("request was cancelled")
			}
			a.sendUpdate("Error talking to model", "")
			return "", err
		}

		segments := ParseTurn(reply)
		invocations := Invocations(segments)
		logger.Debug("model reply: %d bytes, %d tool calls", len(reply), len(invocations))

		checkpoint := a.session.Len()
		a.session.Append(RoleAssistant, reply)

		if len(invocations) == 0 {
			logger.Info("final response received")
			a.sendUpdate("Done", "")
			return ResidualText(segments), nil
		}

		// Tool calls run strictly one after another in parse order:
		// the model relies on positional correspondence between its
		// calls and the tool_result turns that follow.
		for _, inv := range invocations {
			if ctx.Err() != nil {
				a.session.Truncate(checkpoint)
				a.sendUpdate("Cancelled", "")
				return "", fmt.Errorf("request was cancelled")
			}

			a.sendUpdate(describeInvocation(inv), "")
			outcome := a.dispatcher.Execute(ctx, inv)

			if outcome.OK {
				a.sendUpdate(fmt.Sprintf("Finished %s", outcome.Tool), diffPreview(outcome))
			} else {
				a.sendUpdate(fmt.Sprintf("%s failed: %s", outcome.Tool, outcome.Failure.Message), "")
			}
			a.session.Append(RoleToolResult, outcome.RenderTurn())
		}
		// Loop back so the model sees the tool results.
	}

	logger.Info("agent loop limit reached")
	a.sendUpdate("Error: loop limit reached", "")
	return "I could not finish within the allowed number of turns.", nil
}

// Reset starts a new conversation on a fresh session.
func (a *Agent) Reset() {
	a.session = NewSession()
}

func describeInvocation(inv *ToolInvocation) string {
	switch inv.Name {
	case "read_file":
		return "Reading file..."
	case "list_files":
		return "Listing files..."
	case "edit_file":
		return "Editing file..."
	case "undo_edit":
		return "Restoring snapshot..."
	default:
		return fmt.Sprintf("Running %s...", inv.Name)
	}
}

// diffPreview pulls a patch preview out of an edit outcome so the UI
// can show the change as it happens.
func diffPreview(outcome ToolOutcome) string {
	payload, ok := outcome.Result.(map[string]any)
	if !ok {
		return ""
	}
	diff, _ := payload["diff"].(string)
	return diff
}
