package watcher

import (
	"context"
	"fmt"

	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/fanout"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/push"

	"github.com/rs/zerolog/log"
)

// InvitationHandler emits one invite task per pending invitation. Ids are remembered for
// the process lifetime; notifiedAt covers restarts.
type InvitationHandler struct {
	processed map[string]struct{}
}

var _ Handler[model.Invitation] = (*InvitationHandler)(nil)

func NewInvitationHandler() *InvitationHandler {
	return &InvitationHandler{processed: map[string]struct{}{}}
}

// Initialize qualifies the invitations present at subscription time like any change, so
// invitations created while no subscription was live are still notified once.
func (h *InvitationHandler) Initialize(ctx context.Context, snapshot event.Snapshot[model.Invitation]) []fanout.Task {
	tasks := []fanout.Task{}
	for _, change := range snapshot.Changes {
		tasks = append(tasks, h.OnChange(ctx, change)...)
	}
	return tasks
}

func (h *InvitationHandler) OnChange(_ context.Context, change event.Change[model.Invitation]) []fanout.Task {
	if change.Type == event.DbDocDeleted {
		return nil
	}

	inv := change.Data
	logger := log.With().Str("watcher", "invitations").Str("invitation", change.Id).Logger()

	switch {
	case !inv.IsPending():
		logger.Debug().Msgf("skip invitation with status %s", inv.Status)
		return nil
	case inv.NotifiedAt != nil:
		logger.Debug().Msg("skip invitation already notified")
		return nil
	}

	if _, ok := h.processed[change.Id]; ok {
		logger.Debug().Msg("skip invitation already processed")
		return nil
	}
	h.processed[change.Id] = struct{}{}

	if inv.ToUserId == "" {
		logger.Info().Msg("skip invitation without recipient")
		return nil
	}

	return []fanout.Task{{
		RecipientId:  inv.ToUserId,
		Kind:         fanout.KindInvite,
		InvitationId: change.Id,
		Message:      invitationMessage(change.Id, inv),
	}}
}

func invitationMessage(id string, inv model.Invitation) push.Message {
	name := inv.ItemName
	if name == "" {
		name = "a shared list"
	}
	return push.Message{
		Title: "New invitation",
		Body:  fmt.Sprintf("You have been invited to join %q", name),
		Data: map[string]string{
			"type":         "invitation",
			"invitationId": id,
			"itemId":       inv.ItemId,
			"itemType":     string(inv.ItemType),
		},
	}
}
