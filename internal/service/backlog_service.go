package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"habit-planner/internal/bizday"
	"habit-planner/internal/model"
	"habit-planner/internal/repository"
)

// BacklogInput represents data required to create a backlog item.
type BacklogInput struct {
	Title         string
	Category      string
	Priority      model.Priority
	Deadline      string
	ScheduledDate string
	Place         string
	IsPetAllowed  bool
	IsHighlighted bool
	SprintID      string
}

// BacklogPatch lists the fields to change; nil fields stay as they are.
// An empty Deadline clears it.
type BacklogPatch struct {
	Title         *string
	Category      *string
	Priority      *model.Priority
	Status        *model.BacklogStatus
	Deadline      *string
	Place         *string
	IsPetAllowed  *bool
	IsHighlighted *bool
}

// BacklogService wraps backlog business logic.
type BacklogService struct {
	store *repository.Store
	clock *bizday.Resolver
	sync  *syncer
}

func NewBacklogService(store *repository.Store, clock *bizday.Resolver, logger *slog.Logger) *BacklogService {
	return &BacklogService{store: store, clock: clock, sync: newSyncer(store, clock, logger)}
}

// Add creates a backlog item at the end of the backlog. With a scheduled date
// the item is picked for that day in the same batch.
func (s *BacklogService) Add(ctx context.Context, input BacklogInput) (*model.BacklogItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("title is required")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = model.CategoryResearch
	}
	if !model.ValidCategory(category) {
		return nil, invalid("unknown category %q", category)
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return nil, invalid("unknown priority %q", priority)
	}

	deadline, err := optionalDate(input.Deadline)
	if err != nil {
		return nil, err
	}
	scheduled, err := optionalDate(input.ScheduledDate)
	if err != nil {
		return nil, err
	}

	item := model.BacklogItem{
		ID:            uuid.NewString(),
		Title:         title,
		Category:      category,
		Priority:      priority,
		Status:        model.BacklogStock,
		IsHighlighted: input.IsHighlighted,
		IsPetAllowed:  input.IsPetAllowed,
		Deadline:      deadline,
	}
	if category == model.CategoryFood {
		item.Place = strings.TrimSpace(input.Place)
	}
	if scheduled != nil {
		item.Status = model.BacklogPending
		item.ScheduledDate = scheduled
	}

	err = s.store.Batch(ctx, func(tx *repository.Store) error {
		if input.SprintID != "" {
			if _, err := tx.Sprints.FindByID(ctx, input.SprintID); err != nil {
				return lookupErr(err, "sprint", input.SprintID)
			}
			sprintID := input.SprintID
			item.SprintID = &sprintID
		}

		maxOrder, err := tx.Backlog.MaxOrder(ctx)
		if err != nil {
			return err
		}
		item.Order = maxOrder + 1
		if err := tx.Backlog.Create(ctx, &item); err != nil {
			return err
		}

		if scheduled == nil {
			return nil
		}
		date := bizday.FormatDate(*scheduled)
		dayMax, err := tx.Daily.MaxOrder(ctx, date)
		if err != nil {
			return err
		}
		return tx.Daily.Create(ctx, backlogOccurrence(&item, date, dayMax+1))
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *BacklogService) Get(ctx context.Context, id string) (*model.BacklogItem, error) {
	item, err := s.store.Backlog.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "backlog item", id)
	}
	return item, nil
}

func (s *BacklogService) List(ctx context.Context, filter repository.BacklogFilter) ([]model.BacklogItem, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("unknown status %q", filter.Status)
	}
	return s.store.Backlog.List(ctx, filter)
}

// Update applies patch. Title and highlight changes are copied into the
// item's daily tasks from today on.
func (s *BacklogService) Update(ctx context.Context, id string, patch BacklogPatch) (*model.BacklogItem, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	synced := make(map[string]interface{})

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, invalid("title must not be empty")
		}
		fields["title"] = title
		if title != item.Title {
			synced["title"] = title
		}
	}

	category := item.Category
	if patch.Category != nil {
		category = strings.TrimSpace(*patch.Category)
		if !model.ValidCategory(category) {
			return nil, invalid("unknown category %q", category)
		}
		fields["category"] = category
	}
	if patch.Place != nil || category != item.Category {
		place := item.Place
		if patch.Place != nil {
			place = strings.TrimSpace(*patch.Place)
		}
		if category != model.CategoryFood {
			place = ""
		}
		fields["place"] = place
	}

	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return nil, invalid("unknown priority %q", *patch.Priority)
		}
		fields["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, invalid("unknown status %q", *patch.Status)
		}
		fields["status"] = *patch.Status
	}
	if patch.Deadline != nil {
		deadline, err := optionalDate(*patch.Deadline)
		if err != nil {
			return nil, err
		}
		if deadline == nil {
			fields["deadline"] = nil
		} else {
			fields["deadline"] = *deadline
		}
	}
	if patch.IsPetAllowed != nil {
		fields["is_pet_allowed"] = *patch.IsPetAllowed
	}
	if patch.IsHighlighted != nil {
		fields["is_highlighted"] = *patch.IsHighlighted
		if *patch.IsHighlighted != item.IsHighlighted {
			synced["is_highlighted"] = *patch.IsHighlighted
		}
	}

	if len(fields) == 0 {
		return item, nil
	}
	if err := s.store.Backlog.Update(ctx, id, fields); err != nil {
		return nil, lookupErr(err, "backlog item", id)
	}

	s.sync.propagateToOccurrences(ctx, model.SourceBacklog, id, synced)
	return s.Get(ctx, id)
}

// Reorder sets each item's order to its position in ids.
func (s *BacklogService) Reorder(ctx context.Context, ids []string) error {
	return s.store.Batch(ctx, func(tx *repository.Store) error {
		for i, id := range ids {
			if err := tx.Backlog.Update(ctx, id, map[string]interface{}{"sort_order": i + 1}); err != nil {
				return lookupErr(err, "backlog item", id)
			}
		}
		return nil
	})
}

func (s *BacklogService) SetArchived(ctx context.Context, id string, archived bool) (*model.BacklogItem, error) {
	if err := s.store.Backlog.Update(ctx, id, map[string]interface{}{"is_archived": archived}); err != nil {
		return nil, lookupErr(err, "backlog item", id)
	}
	return s.Get(ctx, id)
}

// Delete removes the item. Its daily tasks are not deleted.
func (s *BacklogService) Delete(ctx context.Context, id string) error {
	if err := s.store.Backlog.Delete(ctx, id); err != nil {
		return lookupErr(err, "backlog item", id)
	}
	return nil
}

// optionalDate parses a YYYY-MM-DD value; "" means no date.
func optionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := bizday.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &t, nil
}

func requireDate(raw string) error {
	if !bizday.ValidDate(raw) {
		return invalid("date %q must be YYYY-MM-DD", raw)
	}
	return nil
}
