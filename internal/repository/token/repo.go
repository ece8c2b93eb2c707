package token

import (
	"context"
	"fmt"

	"recipe-push-server/internal/database"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/repository/filter"
	"recipe-push-server/internal/repository/ops"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
)

type TokenRepository struct {
	db database.Client
}

var _ IRepository = TokenRepository{}

func New(db database.Client) TokenRepository {
	return TokenRepository{
		db: db,
	}
}

// GetByUser returns the user's registrations that carry a token value.
func (r TokenRepository) GetByUser(ctx context.Context, userId string) ([]model.NotificationToken, error) {
	query := r.db.Collection(userNode).Doc(userId).Collection(tokenNode).Query
	docs, err := r.db.GetDocs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get tokens: %w, user: %s", err, userId)
	}

	tokens := make([]model.NotificationToken, 0, len(docs))
	for _, doc := range docs {
		t := model.NotificationToken{}
		if err := doc.DataTo(&t); err != nil {
			log.Error().Err(err).Msgf("token repo: failed to convert doc %s", doc.Ref.ID)
			continue
		}
		if t.Token == "" {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// DeleteByToken removes every registration holding the token value, whichever user owns it.
func (r TokenRepository) DeleteByToken(ctx context.Context, token string) error {
	query := filter.Apply(r.db.CollectionGroup(tokenNode).Query,
		[]filter.Where{{Path: TokenFieldPath, Op: ops.Equal, Value: token}})

	docs, err := r.db.GetDocs(ctx, query)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, doc.Ref)
	}

	if err := r.db.DeleteDocs(ctx, refs); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	log.Info().Int("registrations", len(refs)).Msg("removed stale token")
	return nil
}
