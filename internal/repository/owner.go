package repository

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"resto-ledger/internal/model"
)

// ownerQuery starts a query scoped to the signed-in owner.
func ownerQuery(owner OwnerSource) (url.Values, string, error) {
	id, err := owner.CurrentUserID()
	if err != nil {
		return nil, "", err
	}
	if id == "" {
		return nil, "", model.ErrNotAuthenticated
	}
	return url.Values{"ownerId": {id}}, id, nil
}

// notFound turns a 404 from the store into model.ErrNotFound.
func notFound(err error, what, id string) error {
	var netErr *model.NetworkError
	if errors.As(err, &netErr) && netErr.Status == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", what, id, model.ErrNotFound)
	}
	return err
}

// withoutID drops the record identified by excludeID. The store filter
// id_ne is sent too, but not every store honours it.
func withoutID[T any](items []T, excludeID string, idOf func(T) string) []T {
	if excludeID == "" {
		return items
	}
	out := items[:0]
	for _, it := range items {
		if idOf(it) != excludeID {
			out = append(out, it)
		}
	}
	return out
}
