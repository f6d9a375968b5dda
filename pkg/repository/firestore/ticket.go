package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ticketRepository struct {
	client           *firestore.Client
	collectionPrefix string

	onDelete func(ctx context.Context, id types.TicketID) error
}

func newTicketRepository(client *firestore.Client) *ticketRepository {
	return &ticketRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *ticketRepository) ticketsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_tickets"
	}
	return "tickets"
}

func (r *ticketRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *ticketRepository) ticketCounterDoc() string {
	return "ticket_counter"
}

func (r *ticketRepository) getNextID(ctx context.Context) (types.TicketID, error) {
	counterRef := r.client.Collection(r.counterCollection()).Doc(r.ticketCounterDoc())

	var nextID int64
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(counterRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				nextID = 1
				return tx.Set(counterRef, map[string]interface{}{
					"value": nextID,
				})
			}
			return goerr.Wrap(err, "failed to get counter")
		}

		currentValue, err := doc.DataAt("value")
		if err != nil {
			return goerr.Wrap(err, "failed to get counter value")
		}

		val, ok := currentValue.(int64)
		if !ok {
			return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
		}
		nextID = val + 1
		return tx.Update(counterRef, []firestore.Update{
			{Path: "value", Value: nextID},
		})
	})

	if err != nil {
		return 0, goerr.Wrap(err, "failed to get next ID")
	}

	return types.TicketID(nextID), nil
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	nextID, err := r.getNextID(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID")
	}

	now := time.Now().UTC()
	created := ticket.Clone()
	created.ID = nextID
	created.Status = types.TicketStatusPending
	created.Priority = ticket.Priority.Normalize()
	created.CreatedAt = now
	created.UpdatedAt = now

	docID := fmt.Sprintf("%d", created.ID)
	if _, err := r.client.Collection(r.ticketsCollection()).Doc(docID).Set(ctx, created); err != nil {
		return nil, goerr.Wrap(err, "failed to create ticket", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *ticketRepository) Get(ctx context.Context, id types.TicketID) (*model.Ticket, error) {
	docID := fmt.Sprintf("%d", id)
	docSnap, err := r.client.Collection(r.ticketsCollection()).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V("id", id))
	}

	var ticket model.Ticket
	if err := docSnap.DataTo(&ticket); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V("id", id))
	}

	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, opts ...interfaces.ListTicketOption) ([]*model.Ticket, error) {
	filter := interfaces.BuildListTicketFilter(opts)

	query := r.client.Collection(r.ticketsCollection()).Query
	if filter.Owner != "" {
		query = query.Where("created_by", "==", string(filter.Owner))
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	if filter.Kind != "" {
		query = query.Where("task_kind", "==", string(filter.Kind))
	}
	query = query.OrderBy("created_at", firestore.Desc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var tickets []*model.Ticket
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tickets")
		}

		var ticket model.Ticket
		if err := docSnap.DataTo(&ticket); err != nil {
			return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V("doc_id", docSnap.Ref.ID))
		}

		tickets = append(tickets, &ticket)
	}

	return tickets, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	docID := fmt.Sprintf("%d", ticket.ID)
	docRef := r.client.Collection(r.ticketsCollection()).Doc(docID)

	var updated *model.Ticket
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("id", ticket.ID))
			}
			return goerr.Wrap(err, "failed to get ticket", goerr.V("id", ticket.ID))
		}

		var stored model.Ticket
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode ticket", goerr.V("id", ticket.ID))
		}

		next := ticket.Clone()
		next.CreatedAt = stored.CreatedAt
		// Status only moves through Transition; Update cannot overwrite a
		// concurrent status change.
		next.Status = stored.Status
		next.UpdatedAt = time.Now().UTC()
		updated = next

		return tx.Set(docRef, next)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Transition flips the ticket status from one expected state to another
// in a single transaction, so two workers claiming the same ticket
// cannot both succeed.
func (r *ticketRepository) Transition(ctx context.Context, id types.TicketID, from, to types.TicketStatus) (*model.Ticket, error) {
	docID := fmt.Sprintf("%d", id)
	docRef := r.client.Collection(r.ticketsCollection()).Doc(docID)

	var transitioned *model.Ticket
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get ticket", goerr.V("id", id))
		}

		var stored model.Ticket
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode ticket", goerr.V("id", id))
		}

		if stored.Status != from {
			return goerr.Wrap(types.ErrInvalidState, "ticket status changed",
				goerr.V("id", id),
				goerr.V("expected", from),
				goerr.V("actual", stored.Status),
			)
		}
		if !from.CanTransitionTo(to) {
			return goerr.Wrap(types.ErrInvalidState, "illegal transition",
				goerr.V("id", id),
				goerr.V("from", from),
				goerr.V("to", to),
			)
		}

		stored.Status = to
		stored.UpdatedAt = time.Now().UTC()
		transitioned = &stored

		return tx.Set(docRef, &stored)
	})

	if err != nil {
		return nil, err
	}

	return transitioned, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id types.TicketID) error {
	docID := fmt.Sprintf("%d", id)
	docRef := r.client.Collection(r.ticketsCollection()).Doc(docID)

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(types.ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check ticket existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete ticket", goerr.V("id", id))
	}

	if r.onDelete != nil {
		return r.onDelete(ctx, id)
	}
	return nil
}
