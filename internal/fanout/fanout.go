package fanout

import (
	"context"
	"fmt"

	"recipe-push-server/internal/model"
	"recipe-push-server/internal/push"
	"recipe-push-server/internal/repository/preference"
	"recipe-push-server/internal/repository/token"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Kind string

const (
	KindInvite Kind = "invite"
	KindUpdate Kind = "update"
)

type Outcome int

const (
	Sent Outcome = iota
	SkippedNoRecipient
	SkippedPreference
	SkippedNoTokens
)

func (o Outcome) String() string {
	switch o {
	case Sent:
		return "sent"
	case SkippedNoRecipient:
		return "no recipient"
	case SkippedPreference:
		return "disabled by preferences"
	case SkippedNoTokens:
		return "no tokens"
	}
	return "unknown"
}

// Task is one push to one recipient.
type Task struct {
	RecipientId string
	Kind        Kind
	Message     push.Message
	// InvitationId is stamped with notifiedAt after an invite task was dispatched.
	InvitationId string
}

type InvitationMarker interface {
	MarkNotified(ctx context.Context, id string) error
}

type Orchestrator struct {
	prefs       preference.IRepository
	tokens      token.IRepository
	invitations InvitationMarker
	sender      push.Sender
	concurrency int
}

func New(prefs preference.IRepository, tokens token.IRepository, invitations InvitationMarker, sender push.Sender, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Orchestrator{
		prefs:       prefs,
		tokens:      tokens,
		invitations: invitations,
		sender:      sender,
		concurrency: concurrency,
	}
}

// Allowed reports whether prefs let a notification of kind through.
func Allowed(prefs model.NotificationPreferences, kind Kind) bool {
	if !prefs.Enabled() {
		return false
	}
	switch kind {
	case KindInvite:
		return prefs.Invites()
	case KindUpdate:
		return prefs.Updates()
	}
	return false
}

// Notify runs one task once. Errors from reading preferences or tokens, a failed
// bulk send or a failed marker write are returned; they are never retried.
func (o *Orchestrator) Notify(ctx context.Context, task Task) (Outcome, error) {
	logger := log.With().Str("recipient", task.RecipientId).Str("kind", string(task.Kind)).Logger()

	if task.RecipientId == "" {
		logger.Info().Msg("fanout: no recipient, skipping")
		return SkippedNoRecipient, nil
	}

	prefs, err := o.prefs.GetByUser(ctx, task.RecipientId)
	if err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	if !Allowed(prefs, task.Kind) {
		logger.Info().Msg("fanout: disabled by preferences")
		return SkippedPreference, nil
	}

	registrations, err := o.tokens.GetByUser(ctx, task.RecipientId)
	if err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	tokens := uniqueTokens(registrations)
	if len(tokens) == 0 {
		logger.Info().Msg("fanout: no tokens")
		return SkippedNoTokens, nil
	}

	result, sendErr := o.sender.Send(ctx, tokens, task.Message)
	o.cleanup(ctx, result.Failed)
	if sendErr != nil {
		return 0, fmt.Errorf("notify: %w", sendErr)
	}

	if task.Kind == KindInvite && task.InvitationId != "" {
		if err := o.invitations.MarkNotified(ctx, task.InvitationId); err != nil {
			return Sent, fmt.Errorf("notify: %w", err)
		}
	}

	logger.Debug().Int("delivered", len(result.Succeeded)).Int("failed", len(result.Failed)).Int("unconfirmed", len(result.Unconfirmed)).Msg("fanout: sent")
	return Sent, nil
}

// Dispatch runs every task concurrently and waits for all of them. A failing task is
// logged and never affects its siblings.
func (o *Orchestrator) Dispatch(ctx context.Context, tasks []Task) {
	group := errgroup.Group{}
	group.SetLimit(o.concurrency)

	for _, task := range tasks {
		task := task
		group.Go(func() error {
			if _, err := o.Notify(ctx, task); err != nil {
				log.Error().Err(err).Str("recipient", task.RecipientId).Msg("fanout: task failed")
			}
			return nil
		})
	}

	_ = group.Wait()
}

func (o *Orchestrator) cleanup(ctx context.Context, failed []string) {
	for _, t := range failed {
		if err := o.tokens.DeleteByToken(ctx, t); err != nil {
			log.Error().Err(err).Msg("fanout: failed to remove stale token")
		}
	}
}

func uniqueTokens(registrations []model.NotificationToken) []string {
	seen := make(map[string]struct{}, len(registrations))
	tokens := make([]string, 0, len(registrations))
	for _, r := range registrations {
		if r.Token == "" {
			continue
		}
		if _, ok := seen[r.Token]; ok {
			continue
		}
		seen[r.Token] = struct{}{}
		tokens = append(tokens, r.Token)
	}
	return tokens
}
