package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qmuntal/stateless"
	"gorm.io/gorm"

	"portfolio-backend/internal/database"
	"portfolio-backend/pkg/api"
)

// MaxProjectCards bounds both the rendered listing and the project context
// handed to the LLM.
const MaxProjectCards = 4

const (
	noProjectsText   = "현재 등록된 프로젝트가 없습니다."
	noTechMatchText  = "해당 기술을 사용한 프로젝트를 찾지 못했습니다."
	missingKeyText   = "관리자에게 문의하세요: OPENAI_API_KEY가 설정되지 않았습니다."
	authErrorText    = "OpenAI API 키가 유효하지 않습니다. 관리자에게 문의하세요."
	backendErrorText = "AI 응답 생성 중 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
)

// Request lifecycle states. History is only ever written after an envelope
// exists; failure paths route through stateFailed and skip the history
// update entirely.
type dispatchState stateless.State

var (
	stateReceived       dispatchState = "Received"
	stateClassified     dispatchState = "Classified"
	stateCannedResolved dispatchState = "CannedResolved"
	stateDBResolved     dispatchState = "DBResolved"
	stateLLMPending     dispatchState = "LLMPending"
	stateLLMResolved    dispatchState = "LLMResolved"
	stateEnveloped      dispatchState = "Enveloped"
	stateHistoryUpdated dispatchState = "HistoryUpdated"
	stateReturned       dispatchState = "Returned"
	stateFailed         dispatchState = "Failed"
)

type dispatchTrigger stateless.Trigger

var (
	triggerClassify    dispatchTrigger = "Classify"
	triggerCanned      dispatchTrigger = "CannedResponse"
	triggerDBResolve   dispatchTrigger = "DBResponse"
	triggerLLMStart    dispatchTrigger = "LLMStart"
	triggerLLMDone     dispatchTrigger = "LLMDone"
	triggerEnvelope    dispatchTrigger = "Envelope"
	triggerSaveHistory dispatchTrigger = "SaveHistory"
	triggerReturn      dispatchTrigger = "Return"
	triggerFail        dispatchTrigger = "Fail"
)

func newDispatchMachine() *stateless.StateMachine {
	machine := stateless.NewStateMachine(stateReceived)

	machine.Configure(stateReceived).
		Permit(triggerClassify, stateClassified)
	machine.Configure(stateClassified).
		Permit(triggerCanned, stateCannedResolved).
		Permit(triggerDBResolve, stateDBResolved).
		Permit(triggerLLMStart, stateLLMPending).
		Permit(triggerFail, stateFailed)
	machine.Configure(stateCannedResolved).
		Permit(triggerEnvelope, stateEnveloped)
	machine.Configure(stateDBResolved).
		Permit(triggerEnvelope, stateEnveloped)
	machine.Configure(stateLLMPending).
		Permit(triggerLLMDone, stateLLMResolved).
		Permit(triggerFail, stateFailed)
	machine.Configure(stateLLMResolved).
		Permit(triggerEnvelope, stateEnveloped)
	machine.Configure(stateEnveloped).
		Permit(triggerSaveHistory, stateHistoryUpdated)
	machine.Configure(stateHistoryUpdated).
		Permit(triggerReturn, stateReturned)
	machine.Configure(stateFailed).
		Permit(triggerReturn, stateReturned)

	return machine
}

// Dispatcher routes one chat turn: classify, resolve via a canned rule, the
// project table, or the LLM fallback, wrap the outcome in an envelope, then
// record the exchange.
type Dispatcher struct {
	db         *gorm.DB
	rules      *Rules
	classifier *Classifier
	history    *HistoryStore

	// nil when the hosted provider is selected without a credential; the
	// fallback path then degrades to a fixed apology.
	generator Generator
}

func NewDispatcher(db *gorm.DB, rules *Rules, generator Generator) *Dispatcher {
	matcher := NewTechMatcher(rules)
	return &Dispatcher{
		db:         db,
		rules:      rules,
		classifier: NewClassifier(rules, matcher),
		history:    NewHistoryStore(db),
		generator:  generator,
	}
}

func fire(machine *stateless.StateMachine, trigger dispatchTrigger) error {
	if err := machine.Fire(trigger); err != nil {
		return fmt.Errorf("invalid dispatch transition %v: %w", trigger, err)
	}
	return nil
}

// Dispatch handles one inbound message for the session and returns the
// response envelope. Backend-facing faults are converted into apology
// envelopes here; only storage failures propagate as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, rawMessage string) (api.Envelope, error) {
	message := strings.ToLower(strings.TrimSpace(rawMessage))
	machine := newDispatchMachine()

	recent, err := d.history.Recent(ctx, sessionID)
	if err != nil {
		return api.Envelope{}, err
	}
	lastAIText := ""
	if len(recent) > 0 {
		lastAIText = recent[len(recent)-1].AI
	}

	intent, tag := d.classifier.Classify(message, lastAIText)
	if err := fire(machine, triggerClassify); err != nil {
		return api.Envelope{}, err
	}

	var envelope api.Envelope
	var simplified string

	switch intent {
	case IntentProjectList, IntentProjectFilter:
		envelope, simplified, err = d.resolveProjects(ctx, tag)
		if err != nil {
			return api.Envelope{}, err
		}
		if err := fire(machine, triggerDBResolve); err != nil {
			return api.Envelope{}, err
		}

	case IntentTechStack:
		envelope = textEnvelope(d.rules.Intents.TechStack.Response)
		simplified = envelope.Content
		if err := fire(machine, triggerCanned); err != nil {
			return api.Envelope{}, err
		}

	case IntentSelfIntro:
		envelope = textEnvelope(d.rules.Intents.SelfIntro.Response)
		simplified = envelope.Content
		if err := fire(machine, triggerCanned); err != nil {
			return api.Envelope{}, err
		}

	case IntentGreeting:
		envelope = textEnvelope(d.rules.Intents.Greeting.Response)
		envelope.Suggestions = d.rules.Intents.Greeting.Suggestions
		simplified = envelope.Content
		if err := fire(machine, triggerCanned); err != nil {
			return api.Envelope{}, err
		}

	default:
		if d.generator == nil {
			if err := fire(machine, triggerFail); err != nil {
				return api.Envelope{}, err
			}
			if err := fire(machine, triggerReturn); err != nil {
				return api.Envelope{}, err
			}
			return textEnvelope(missingKeyText), nil
		}

		if err := fire(machine, triggerLLMStart); err != nil {
			return api.Envelope{}, err
		}

		generated, genErr := d.generate(ctx, recent, message)
		if genErr != nil {
			apology := backendErrorText
			if errors.Is(genErr, ErrAuthentication) {
				apology = authErrorText
			}
			slog.Error("inference backend call failed", "session_id", sessionID, "error", genErr)

			if err := fire(machine, triggerFail); err != nil {
				return api.Envelope{}, err
			}
			if err := fire(machine, triggerReturn); err != nil {
				return api.Envelope{}, err
			}
			return textEnvelope(apology), nil
		}
		if err := fire(machine, triggerLLMDone); err != nil {
			return api.Envelope{}, err
		}

		envelope = htmlEnvelope(RenderMarkdown(generated))
		// Raw generated text, not markup, so future turns get plain context.
		simplified = generated
	}

	if err := fire(machine, triggerEnvelope); err != nil {
		return api.Envelope{}, err
	}

	if err := d.history.Append(ctx, sessionID, message, simplified); err != nil {
		return api.Envelope{}, err
	}
	if err := fire(machine, triggerSaveHistory); err != nil {
		return api.Envelope{}, err
	}
	if err := fire(machine, triggerReturn); err != nil {
		return api.Envelope{}, err
	}

	return envelope, nil
}

func (d *Dispatcher) resolveProjects(ctx context.Context, tag string) (api.Envelope, string, error) {
	projects, err := database.ListVisibleProjects(ctx, d.db, tag, MaxProjectCards)
	if err != nil {
		return api.Envelope{}, "", err
	}

	if len(projects) == 0 {
		text := noProjectsText
		if tag != "" {
			text = noTechMatchText
		}
		return textEnvelope(text), text, nil
	}

	rendered, err := RenderProjectCards(projects)
	if err != nil {
		return api.Envelope{}, "", err
	}

	envelope := htmlEnvelope(rendered)
	envelope.Suggestions = d.rules.Intents.Project.Suggestions
	return envelope, projectListMarker, nil
}

func (d *Dispatcher) generate(ctx context.Context, history []Exchange, message string) (string, error) {
	contextProjects, err := database.ListVisibleProjects(ctx, d.db, "", MaxProjectCards)
	if err != nil {
		return "", err
	}

	messages := BuildMessages(ProjectContext(contextProjects), history, message)
	return d.generator.Generate(ctx, messages)
}

func textEnvelope(content string) api.Envelope {
	return api.Envelope{Type: api.EnvelopeText, Content: content}
}

func htmlEnvelope(content string) api.Envelope {
	return api.Envelope{Type: api.EnvelopeHTML, Content: content}
}
