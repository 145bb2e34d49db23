package acl

import (
	"context"
	"net/http"

	"github.com/jsamuelsen/quoteswipe/internal/adapters/clients"
	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// ContentAPI serves marketing data, translation and the visitor beacon.
// It implements ports.ContentSource.
type ContentAPI struct {
	BaseAdapter
}

// NewContentAPI creates the adapter.
func NewContentAPI(client *clients.Client, serviceName string) *ContentAPI {
	return &ContentAPI{BaseAdapter: NewBaseAdapter(client, serviceName)}
}

type externalStats struct {
	TotalQuotes int `json:"total_quotes"`
	TotalUsers  int `json:"total_users"`
	TotalLikes  int `json:"total_likes"`
}

type externalReview struct {
	ID      domain.QuoteID `json:"id"`
	Author  string         `json:"author"`
	Name    string         `json:"name"`
	Rating  int            `json:"rating"`
	Comment string         `json:"comment"`
	Text    string         `json:"text"`
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type trackRequest struct {
	SessionID string `json:"sessionId"`
	UserAgent string `json:"userAgent"`
	Language  string `json:"language,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Device    string `json:"device"`
}

// Stats implements ports.ContentSource.
func (a *ContentAPI) Stats(ctx context.Context) (*domain.Stats, error) {
	var out externalStats
	if err := a.getJSON(ctx, "/api/stats", "get stats", "", &out); err != nil {
		return nil, err
	}

	return &domain.Stats{
		TotalQuotes: out.TotalQuotes,
		TotalUsers:  out.TotalUsers,
		TotalLikes:  out.TotalLikes,
	}, nil
}

// Reviews implements ports.ContentSource.
func (a *ContentAPI) Reviews(ctx context.Context) ([]domain.Review, error) {
	body := listBody[externalReview]{key: "reviews"}
	if err := a.getJSON(ctx, "/api/reviews", "list reviews", "", &body); err != nil {
		return nil, err
	}

	return FilterSlice(ctx, body.Items, func(ext *externalReview) (domain.Review, error) {
		r := domain.Review{
			ID:      ext.ID.String(),
			Author:  firstNonEmpty(ext.Author, ext.Name),
			Rating:  min(max(ext.Rating, 0), 5),
			Comment: firstNonEmpty(ext.Comment, ext.Text),
		}

		return r, ValidateRequired(r.Comment, "comment")
	}), nil
}

// Translate implements ports.ContentSource.
func (a *ContentAPI) Translate(ctx context.Context, text, target, source string) (*domain.Translation, error) {
	var out translateResponse

	req := translateRequest{Text: text, TargetLanguage: target, SourceLanguage: source}
	if err := a.sendJSON(ctx, http.MethodPost, "/api/translate", "translate", req, &out); err != nil {
		return nil, err
	}

	if out.TranslatedText == "" {
		return nil, domain.NewUnavailableError(a.ServiceName(), "translate returned no text")
	}

	return &domain.Translation{
		Text:           out.TranslatedText,
		TargetLanguage: target,
		SourceLanguage: source,
		Translated:     true,
	}, nil
}

// Track implements ports.ContentSource.
func (a *ContentAPI) Track(ctx context.Context, info domain.VisitorInfo) error {
	return a.sendJSON(ctx, http.MethodPost, "/api/track", "track visitor", trackRequest{
		SessionID: info.SessionID,
		UserAgent: info.UserAgent,
		Language:  info.Language,
		Referrer:  info.Referrer,
		Device:    info.Device,
	}, nil)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
