package remote

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"cadastro/internal/records/models"
	dErrors "cadastro/pkg/domain-errors"
)

// Records is the front-end's view of the hosted document store. Every
// error it returns is a *models.Error.
type Records struct {
	client *Client
}

func NewRecords(client *Client) *Records {
	return &Records{client: client}
}

func (r *Records) Insert(ctx context.Context, collection string, payload any) (string, error) {
	var res models.InsertResponse
	if err := r.client.do(ctx, http.MethodPost, documentsPath(collection), writeBody{Data: payload}, &res); err != nil {
		return "", classify(err)
	}
	return res.ID, nil
}

func (r *Records) Get(ctx context.Context, collection, docID string) (*models.DocumentView, error) {
	var doc models.DocumentView
	if err := r.client.do(ctx, http.MethodGet, documentPath(collection, docID), nil, &doc); err != nil {
		return nil, classify(err)
	}
	return &doc, nil
}

func (r *Records) List(ctx context.Context, collection string) ([]models.DocumentView, error) {
	var docs []models.DocumentView
	if err := r.client.do(ctx, http.MethodGet, documentsPath(collection), nil, &docs); err != nil {
		return nil, classify(err)
	}
	return docs, nil
}

func (r *Records) Update(ctx context.Context, collection, docID string, payload any) error {
	if err := r.client.do(ctx, http.MethodPut, documentPath(collection, docID), writeBody{Data: payload}, nil); err != nil {
		return classify(err)
	}
	return nil
}

func (r *Records) Delete(ctx context.Context, collection, docID string) error {
	if err := r.client.do(ctx, http.MethodDelete, documentPath(collection, docID), nil, nil); err != nil {
		return classify(err)
	}
	return nil
}

// writeBody mirrors models.WriteRequest with an untyped payload so callers
// can send their own structs.
type writeBody struct {
	Data any `json:"data"`
}

func documentsPath(collection string) string {
	return "/v1/collections/" + url.PathEscape(collection) + "/documents"
}

func documentPath(collection, docID string) string {
	return documentsPath(collection) + "/" + url.PathEscape(docID)
}

// classify folds server codes into the closed kind set.
func classify(err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return models.NewError(models.KindUnavailable, te.Error(), err)
	}
	var ae *APIError
	if errors.As(err, &ae) {
		switch dErrors.Code(ae.Code) {
		case dErrors.CodeUnauthorized, dErrors.CodeForbidden:
			return models.NewError(models.KindPermissionDenied, ae.Description, err)
		case dErrors.CodeUnavailable:
			return models.NewError(models.KindUnavailable, ae.Description, err)
		}
		msg := ae.Description
		if msg == "" {
			msg = ae.Code
		}
		return models.NewError(models.KindUnknown, msg, err)
	}
	return models.NewError(models.KindUnknown, err.Error(), err)
}
