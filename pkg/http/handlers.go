package http

import (
	"encoding/json"
	"net/http"
	"time"

	"shortlink/pkg/logging"
	"shortlink/pkg/qr"
	"shortlink/pkg/service"
	"shortlink/pkg/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	linkService    *service.LinkService
	accountService *service.AccountService
	frontendURL    string
	logger         *logging.Logger
}

func NewHandler(linkService *service.LinkService, accountService *service.AccountService, frontendURL string, logger *logging.Logger) *Handler {
	return &Handler{
		linkService:    linkService,
		accountService: accountService,
		frontendURL:    frontendURL,
		logger:         logger,
	}
}

type resource struct {
	Type          string         `json:"type"`
	ID            string         `json:"id"`
	Attributes    any            `json:"attributes"`
	Relationships map[string]any `json:"relationships,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type linkAttributes struct {
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl"`
	Slug        string    `json:"slug"`
	QRCode      string    `json:"qrCode"`
	VisitCount  int       `json:"visitCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// linkResource renders a link with a freshly generated QR code for the
// externally visible short URL.
func (h *Handler) linkResource(link *storage.Link) (resource, error) {
	shortURL := h.frontendURL + "/" + link.Slug
	qrCode, err := qr.DataURL(shortURL)
	if err != nil {
		return resource{}, err
	}

	res := resource{
		Type: "urls",
		ID:   link.ID.String(),
		Attributes: linkAttributes{
			OriginalURL: link.OriginalURL,
			ShortURL:    shortURL,
			Slug:        link.Slug,
			QRCode:      qrCode,
			VisitCount:  link.VisitCount,
			CreatedAt:   link.CreatedAt,
			UpdatedAt:   link.UpdatedAt,
		},
	}
	if link.UserID != nil {
		res.Relationships = map[string]any{
			"user": map[string]any{
				"data": map[string]string{"type": "users", "id": link.UserID.String()},
			},
		}
	}
	return res, nil
}

func (h *Handler) writeLink(w http.ResponseWriter, status int, link *storage.Link) {
	res, err := h.linkResource(link)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server Error", "An unexpected error occurred")
		return
	}
	writeJSON(w, status, dataEnvelope{Data: res})
}

func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req service.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "The request body is not valid JSON")
		return
	}

	link, err := h.linkService.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.writeLink(w, http.StatusCreated, link)
}

type redirectInfo struct {
	OriginalURL string `json:"originalUrl"`
	Slug        string `json:"slug"`
	VisitCount  int    `json:"visitCount"`
}

// RedirectInfo returns the destination for client-side redirection and
// counts the visit.
func (h *Handler) RedirectInfo(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	link, err := h.linkService.Resolve(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, redirectInfo{
		OriginalURL: link.OriginalURL,
		Slug:        link.Slug,
		VisitCount:  link.VisitCount,
	})
}

// Redirect is the legacy server-side redirect. The route shares chi's
// wildcard with the by-ID routes, so the parameter is named "id" even
// though it carries a slug.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "id")
	destination, err := h.linkService.ResolveForRedirect(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	http.Redirect(w, r, destination, http.StatusFound)
}

func (h *Handler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found", "URL not found")
		return
	}

	link, err := h.linkService.Details(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.writeLink(w, http.StatusOK, link)
}

func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found", "URL not found")
		return
	}

	var req service.UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "The request body is not valid JSON")
		return
	}

	link, err := h.linkService.Update(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.writeLink(w, http.StatusOK, link)
}

func (h *Handler) ListUserLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.linkService.ListMine(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resources := make([]resource, 0, len(links))
	for _, link := range links {
		res, err := h.linkResource(link)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Server Error", "An unexpected error occurred")
			return
		}
		resources = append(resources, res)
	}

	writeJSON(w, http.StatusOK, dataEnvelope{Data: resources})
}

func (h *Handler) ClaimLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Not Found", "URL not found")
		return
	}

	link, err := h.linkService.Claim(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.writeLink(w, http.StatusOK, link)
}

type userAttributes struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userResource(user *storage.User, token string) resource {
	res := resource{
		Type: "users",
		ID:   user.ID.String(),
		Attributes: userAttributes{
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
	}
	if token != "" {
		res.Meta = map[string]any{"token": token}
	}
	return res
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "The request body is not valid JSON")
		return
	}

	user, token, err := h.accountService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dataEnvelope{Data: userResource(user, token)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "The request body is not valid JSON")
		return
	}

	user, token, err := h.accountService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataEnvelope{Data: userResource(user, token)})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accountService.Me(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataEnvelope{Data: userResource(user, "")})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// NotFound is the generic envelope for unmatched API routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found", "The requested resource does not exist")
}
