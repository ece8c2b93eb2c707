package preference

import (
	"context"
	"errors"
	"fmt"

	"recipe-push-server/internal/database"
	ierr "recipe-push-server/internal/errors"
	"recipe-push-server/internal/model"
)

type PreferenceRepository struct {
	db database.Client
}

var _ IRepository = PreferenceRepository{}

func New(db database.Client) PreferenceRepository {
	return PreferenceRepository{
		db: db,
	}
}

// GetByUser returns zero-value preferences, which read as all enabled, when the user has none stored.
func (r PreferenceRepository) GetByUser(ctx context.Context, userId string) (model.NotificationPreferences, error) {
	prefs := model.NotificationPreferences{}

	docRef := r.db.Collection(userNode).Doc(userId).Collection(settingsNode).Doc(notificationsDoc)
	docSnap, err := r.db.GetDoc(ctx, docRef)
	if err != nil {
		if errors.Is(err, ierr.NotFound) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("get preferences: %w, user: %s", err, userId)
	}

	if err := docSnap.DataTo(&prefs); err != nil {
		return model.NotificationPreferences{}, fmt.Errorf("get preferences: %w, user: %s", err, userId)
	}
	return prefs, nil
}
