package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sitechat/widget-ai-platform/internal/observability/metrics"
	"github.com/sitechat/widget-ai-platform/internal/tenant"
	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

var orchestratorTracer = otel.Tracer("sitechat.internal.chat.orchestrator")

// ErrEmptyMessage is returned when a visitor submits a blank message.
var ErrEmptyMessage = errors.New("chat: message is empty")

const defaultModelTimeout = 30 * time.Second

// ProfileSource resolves tenant profiles for prompt assembly.
type ProfileSource interface {
	Get(ctx context.Context, tenantID string) (tenant.Profile, error)
}

// AnalyticsSink receives per-turn analytics. SubmitTurn must never block the
// reply path; it reports false when the event had to be dropped.
type AnalyticsSink interface {
	SubmitTurn(tenantID, visitorID, message string) bool
	RecordVisitorInfo(ctx context.Context, tenantID, visitorID, name, email string) error
}

// ContactNotifier tells the tenant's owner that a visitor left contact
// details.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, profile tenant.Profile, name, email string) error
}

// Reply is one assistant message delivered to the widget.
type Reply struct {
	TenantID  string    `json:"tenantId"`
	VisitorID string    `json:"visitorId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Orchestrator ties the pipeline together: profile lookup, seed assembly,
// the model call, post-processing, the journal, and analytics. One
// orchestrator serves every tenant.
type Orchestrator struct {
	profiles     ProfileSource
	llm          LLMClient
	post         *PostProcessor
	journal      *journal
	analytics    AnalyticsSink
	notifier     ContactNotifier
	policy       ResponsePolicy
	metrics      *metrics.ChatMetrics
	logger       *logging.Logger
	modelTimeout time.Duration

	mu    sync.RWMutex
	seeds map[string]ConversationSeed
}

// OrchestratorOptions configures NewOrchestrator. Profiles, LLM, and Redis
// are required; everything else has a working default.
type OrchestratorOptions struct {
	Profiles     ProfileSource
	LLM          LLMClient
	Redis        *redis.Client
	Analytics    AnalyticsSink
	Notifier     ContactNotifier
	Policy       ResponsePolicy
	Metrics      *metrics.ChatMetrics
	Logger       *logging.Logger
	ModelTimeout time.Duration
}

func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	if opts.Profiles == nil {
		panic("chat: profile source cannot be nil")
	}
	if opts.LLM == nil {
		panic("chat: llm client cannot be nil")
	}
	if opts.Policy.MaxLength == 0 {
		opts.Policy = DefaultPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.ModelTimeout <= 0 {
		opts.ModelTimeout = defaultModelTimeout
	}

	post := NewPostProcessor(opts.Policy)
	post.metrics = opts.Metrics

	return &Orchestrator{
		profiles:     opts.Profiles,
		llm:          opts.LLM,
		post:         post,
		journal:      newJournal(opts.Redis, orchestratorTracer),
		analytics:    opts.Analytics,
		notifier:     opts.Notifier,
		policy:       opts.Policy,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		modelTimeout: opts.ModelTimeout,
		seeds:        make(map[string]ConversationSeed),
	}
}

// StartChat opens a conversation with the fixed greeting. No model call is
// made; the greeting also resets the visitor's journal.
func (o *Orchestrator) StartChat(ctx context.Context, tenantID, visitorID string) (*Reply, error) {
	ctx, span := orchestratorTracer.Start(ctx, "chat.start")
	defer span.End()
	span.SetAttributes(
		attribute.String("sitechat.tenant_id", tenantID),
		attribute.String("sitechat.visitor_id", visitorID),
	)

	if _, err := o.profiles.Get(ctx, tenantID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	turns := []Message{{Role: RoleAssistant, Content: o.policy.Greeting}}
	if err := o.journal.Save(ctx, tenantID, visitorID, turns); err != nil {
		o.logger.Error("failed to reset journal", "tenant_id", tenantID, "error", err)
	}

	return &Reply{
		TenantID:  tenantID,
		VisitorID: visitorID,
		Message:   o.policy.Greeting,
		Timestamp: time.Now().UTC(),
	}, nil
}

// SendMessage produces the assistant reply for one visitor message. Contact
// submissions are acknowledged without a model call; everything else goes
// through the model and the post-processing pipeline. A model failure yields
// the apology reply, never an error to the visitor.
func (o *Orchestrator) SendMessage(ctx context.Context, tenantID, visitorID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	ctx, span := orchestratorTracer.Start(ctx, "chat.message")
	defer span.End()
	span.SetAttributes(
		attribute.String("sitechat.tenant_id", tenantID),
		attribute.String("sitechat.visitor_id", visitorID),
	)

	profile, err := o.profiles.Get(ctx, tenantID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var reply string
	if IsContactMessage(message) {
		reply = o.handleContact(ctx, profile, visitorID, message)
	} else {
		reply = o.generateReply(ctx, profile, visitorID, message)
	}

	o.submitTurn(tenantID, visitorID, message)

	return &Reply{
		TenantID:  tenantID,
		VisitorID: visitorID,
		Message:   reply,
		Timestamp: time.Now().UTC(),
	}, nil
}

// InvalidateSeed drops the cached seed for a tenant. Call after the tenant's
// profile changes so the next message sees the new persona.
func (o *Orchestrator) InvalidateSeed(tenantID string) {
	o.mu.Lock()
	delete(o.seeds, tenantID)
	o.mu.Unlock()
}

func (o *Orchestrator) handleContact(ctx context.Context, profile tenant.Profile, visitorID, message string) string {
	info := ParseContactInfo(message)

	if o.analytics != nil {
		if err := o.analytics.RecordVisitorInfo(ctx, profile.TenantID, visitorID, info.Name, info.Email); err != nil {
			o.logger.Error("failed to record visitor contact info",
				"tenant_id", profile.TenantID, "error", err)
		}
	}
	if o.notifier != nil {
		go func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := o.notifier.NotifyContact(notifyCtx, profile, info.Name, info.Email); err != nil {
				o.logger.Error("failed to notify owner of new contact",
					"tenant_id", profile.TenantID, "error", err)
			}
		}()
	}

	turns, err := o.journal.Load(ctx, profile.TenantID, visitorID)
	if err != nil {
		o.logger.Error("failed to load journal", "tenant_id", profile.TenantID, "error", err)
		turns = nil
	}
	o.appendTurns(ctx, profile.TenantID, visitorID, turns, message, o.policy.ContactAck)
	o.metrics.ObserveReply(metrics.ReplyOutcomeContact)
	return o.policy.ContactAck
}

func (o *Orchestrator) generateReply(ctx context.Context, profile tenant.Profile, visitorID, message string) string {
	seed := o.seedFor(profile)

	turns, err := o.journal.Load(ctx, profile.TenantID, visitorID)
	if err != nil {
		o.logger.Error("failed to load journal", "tenant_id", profile.TenantID, "error", err)
		turns = nil
	}

	msgs := make([]Message, 0, len(seed.Turns)+len(turns)+1)
	msgs = append(msgs, seed.Turns...)
	msgs = append(msgs, turns...)
	msgs = append(msgs, Message{Role: RoleUser, Content: message})

	callCtx, cancel := context.WithTimeout(ctx, o.modelTimeout)
	defer cancel()

	started := time.Now()
	resp, err := o.llm.Complete(callCtx, LLMRequest{Messages: msgs})
	elapsed := time.Since(started).Seconds()
	if err != nil {
		o.metrics.ObserveModelLatency("error", elapsed)
		o.metrics.ObserveReply(metrics.ReplyOutcomeApology)
		o.logger.Error("model call failed", "tenant_id", profile.TenantID, "error", err)
		return o.policy.Apology
	}
	o.metrics.ObserveModelLatency("ok", elapsed)

	reply := o.post.Process(resp.Text, lastAssistantReply(turns))
	o.appendTurns(ctx, profile.TenantID, visitorID, turns, message, reply)
	o.metrics.ObserveReply(metrics.ReplyOutcomeOK)
	return reply
}

// seedFor returns the cached seed for the tenant, rebuilding it when absent
// or built under an older policy version.
func (o *Orchestrator) seedFor(profile tenant.Profile) ConversationSeed {
	o.mu.RLock()
	seed, ok := o.seeds[profile.TenantID]
	o.mu.RUnlock()
	if ok && seed.PolicyVersion == o.policy.Version {
		return seed
	}

	seed = BuildSeed(SanitizeProfile(profile), o.policy)
	o.mu.Lock()
	o.seeds[profile.TenantID] = seed
	o.mu.Unlock()
	return seed
}

func (o *Orchestrator) appendTurns(ctx context.Context, tenantID, visitorID string, turns []Message, userMsg, assistantMsg string) {
	turns = append(turns,
		Message{Role: RoleUser, Content: userMsg},
		Message{Role: RoleAssistant, Content: assistantMsg},
	)
	if err := o.journal.Save(ctx, tenantID, visitorID, turns); err != nil {
		o.logger.Error("failed to persist journal", "tenant_id", tenantID, "error", err)
	}
}

func (o *Orchestrator) submitTurn(tenantID, visitorID, message string) {
	if o.analytics == nil {
		return
	}
	if !o.analytics.SubmitTurn(tenantID, visitorID, message) {
		o.logger.Warn("analytics queue full, turn dropped",
			"tenant_id", tenantID, "visitor_id", visitorID)
	}
}

// SeedPreview rebuilds the seed for a tenant without touching the cache.
// Used by the admin API to show what the model will be told.
func (o *Orchestrator) SeedPreview(ctx context.Context, tenantID string) (ConversationSeed, error) {
	profile, err := o.profiles.Get(ctx, tenantID)
	if err != nil {
		return ConversationSeed{}, fmt.Errorf("chat: seed preview: %w", err)
	}
	return BuildSeed(SanitizeProfile(profile), o.policy), nil
}
