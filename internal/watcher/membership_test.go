package watcher

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"recipe-push-server/internal/eventpublisher/event"
	"recipe-push-server/internal/fanout"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/testkit"
)

func menuChange(kind event.EventType, menu model.Menu) event.Change[model.Menu] {
	return event.Change[model.Menu]{Type: kind, Id: menu.Id, Path: "menulists/" + menu.Id, Data: menu}
}

func recipeRefs(ids ...string) []model.RecipeRef {
	refs := make([]model.RecipeRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, model.RecipeRef{RecipeId: id})
	}
	return refs
}

func dinnerMenu(recipes ...string) model.Menu {
	return model.Menu{
		Id:         "m1",
		Name:       "Dinner",
		UserId:     "u1",
		SharedWith: []string{"u2"},
		UpdatedBy:  "u1",
		Recipes:    recipeRefs(recipes...),
	}
}

func TestMenuWatcher_NotifiesSharedMembersExceptAuthor(t *testing.T) {
	t.Parallel()

	env := newPushEnv()
	env.tokens.Register("u1", "tok-u1")
	env.tokens.Register("u2", "tok-u2")

	recipes := testkit.Recipes{Titles: map[string]string{"r1": "Soup", "r2": "Lasagna"}}
	w := New[model.Menu]("menulists",
		replay(
			snapshot(menuChange(event.DbDocAdded, dinnerMenu("r1"))),
			snapshot(menuChange(event.DbDocChanged, dinnerMenu("r1", "r2"))),
		),
		NewMenuHandler(recipes), env.orch)
	runToEnd(t, w)

	if got := env.sender.SendsTo("tok-u1"); len(got) != 0 {
		t.Fatalf("expected the author to receive nothing, got %d pushes", len(got))
	}
	got := env.sender.SendsTo("tok-u2")
	if len(got) != 1 {
		t.Fatalf("expected one push to u2, got %d", len(got))
	}
	if !strings.Contains(got[0].Message.Body, "Lasagna") {
		t.Fatalf("expected body to reference the added recipe, got %q", got[0].Message.Body)
	}
	if got[0].Message.Data["recipeId"] != "r2" || got[0].Message.Data["listId"] != "m1" {
		t.Fatalf("unexpected data %v", got[0].Message.Data)
	}
}

func TestMenuHandler_FallbackLabelWhenLookupFails(t *testing.T) {
	t.Parallel()

	h := NewMenuHandler(testkit.Recipes{Err: errors.New("unavailable")})
	h.Initialize(context.Background(), snapshot(menuChange(event.DbDocAdded, dinnerMenu("r1"))))

	tasks := h.OnChange(context.Background(), menuChange(event.DbDocChanged, dinnerMenu("r1", "r2")))
	if len(tasks) != 1 {
		t.Fatalf("expected one task, got %d", len(tasks))
	}
	if !strings.Contains(tasks[0].Message.Body, fallbackRecipeLabel) {
		t.Fatalf("expected fallback label, got %q", tasks[0].Message.Body)
	}
}

func TestMenuHandler_UnsharedListIsSilentButCacheMoves(t *testing.T) {
	t.Parallel()

	h := NewMenuHandler(testkit.Recipes{})
	private := dinnerMenu("r1")
	private.SharedWith = nil
	h.Initialize(context.Background(), snapshot(menuChange(event.DbDocAdded, private)))

	private.Recipes = recipeRefs("r1", "r2")
	if tasks := h.OnChange(context.Background(), menuChange(event.DbDocChanged, private)); len(tasks) != 0 {
		t.Fatalf("expected no task for an unshared list, got %d", len(tasks))
	}

	// once shared, only additions after the cached state count
	shared := dinnerMenu("r1", "r2", "r3")
	tasks := h.OnChange(context.Background(), menuChange(event.DbDocChanged, shared))
	if len(tasks) != 1 || tasks[0].Message.Data["recipeId"] != "r3" {
		t.Fatalf("expected a single task for r3, got %+v", tasks)
	}
}

func TestMenuHandler_CacheFollowsRemovals(t *testing.T) {
	t.Parallel()

	h := NewMenuHandler(testkit.Recipes{})
	h.Initialize(context.Background(), snapshot(menuChange(event.DbDocAdded, dinnerMenu("r1", "r2"))))

	if tasks := h.OnChange(context.Background(), menuChange(event.DbDocChanged, dinnerMenu("r1"))); len(tasks) != 0 {
		t.Fatalf("expected no task for a removal, got %d", len(tasks))
	}
	tasks := h.OnChange(context.Background(), menuChange(event.DbDocChanged, dinnerMenu("r1", "r2")))
	if len(tasks) != 1 {
		t.Fatalf("expected re-added recipe to notify, got %d tasks", len(tasks))
	}
}

func TestMenuHandler_TaskPerAddedRecipePerRecipient(t *testing.T) {
	t.Parallel()

	h := NewMenuHandler(testkit.Recipes{})
	menu := dinnerMenu("r1")
	menu.SharedWith = []string{"u2", "u3"}
	menu.UpdatedBy = "u2"
	h.Initialize(context.Background(), snapshot(menuChange(event.DbDocAdded, menu)))

	menu.Recipes = recipeRefs("r1", "r2", "r3", "r3")
	tasks := h.OnChange(context.Background(), menuChange(event.DbDocChanged, menu))

	want := []string{"u1", "u3", "u1", "u3"}
	if got := recipientsOf(tasks); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected recipients %v, got %v", want, got)
	}
	for _, task := range tasks {
		if task.Kind != fanout.KindUpdate {
			t.Fatalf("expected update kind, got %s", task.Kind)
		}
	}
}

func TestMenuHandler_AddedAndRemovedDocs(t *testing.T) {
	t.Parallel()

	h := NewMenuHandler(testkit.Recipes{})
	h.Initialize(context.Background(), snapshot[model.Menu]())

	if tasks := h.OnChange(context.Background(), menuChange(event.DbDocAdded, dinnerMenu("r1"))); len(tasks) != 0 {
		t.Fatalf("expected a new list to be cached silently, got %d tasks", len(tasks))
	}
	if tasks := h.OnChange(context.Background(), menuChange(event.DbDocChanged, dinnerMenu("r1"))); len(tasks) != 0 {
		t.Fatalf("expected no additions against the cached list, got %d", len(tasks))
	}

	h.OnChange(context.Background(), menuChange(event.DbDocDeleted, dinnerMenu("r1")))
	if _, ok := h.cache["m1"]; ok {
		t.Fatal("expected removed list to leave the cache")
	}
}

func TestRecipeCollectionWatcher_UsesRecipeIds(t *testing.T) {
	t.Parallel()

	collection := model.RecipeCollection{
		Id:         "c1",
		Name:       "Favourites",
		UserId:     "u1",
		SharedWith: []string{"u2"},
		UpdatedBy:  "u2",
		RecipeIds:  []string{"r1"},
	}
	changed := collection
	changed.RecipeIds = []string{"r1", "r2"}

	rec := &recorder{}
	w := New[model.RecipeCollection]("recipeCollections",
		replay(
			snapshot(event.Change[model.RecipeCollection]{Type: event.DbDocAdded, Id: "c1", Data: collection}),
			snapshot(event.Change[model.RecipeCollection]{Type: event.DbDocChanged, Id: "c1", Data: changed}),
		),
		NewRecipeCollectionHandler(testkit.Recipes{Titles: map[string]string{"r2": "Tacos"}}), rec)
	runToEnd(t, w)

	if got := recipientsOf(rec.tasks); !reflect.DeepEqual(got, []string{"u1"}) {
		t.Fatalf("expected only the owner notified, got %v", got)
	}
	msg := rec.tasks[0].Message
	if msg.Title != "Collection updated" || msg.Data["type"] != string(model.ItemTypeRecipeCollection) {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(msg.Body, "Tacos") || !strings.Contains(msg.Body, "Favourites") {
		t.Fatalf("unexpected body %q", msg.Body)
	}
}
