package rest

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/caltha/wanderlust"
	"github.com/caltha/wanderlust/internal/config"
	"github.com/caltha/wanderlust/internal/domain"
	"github.com/caltha/wanderlust/internal/present/rest/presenter"
	"github.com/caltha/wanderlust/internal/service"
	"github.com/caltha/wanderlust/internal/usecase"
)

// maxUploadBytes caps embedded images at 8 MiB. The original imposed
// no bound; data URIs beyond this bloat every snapshot write.
const maxUploadBytes = 8 << 20

type Handler struct {
	site    config.Site
	views   *Views
	content *usecase.ContentUsecase
	signal  *service.SignalService
}

func NewHandler(
	site config.Site,
	views *Views,
	content *usecase.ContentUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		site:    site,
		views:   views,
		content: content,
		signal:  signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.handleLanding)
	e.GET("/trip/:id", h.handleTrip)
	e.GET("/recipe/:id", h.handleRecipe)
	e.GET("/recipes", h.handleRecipeList)
	e.GET("/admin", h.handleAdmin)
	e.GET("/view/*", h.handleView)

	api := e.Group("/api/v1")
	api.GET("/data", h.handleData)
	api.GET("/sync/status", h.handleSyncStatus)
	api.POST("/upload", h.handleUpload)
	api.POST("/:kind", h.handleUpsert)
	api.PUT("/:kind/:id", h.handleUpsert)
	api.DELETE("/:kind/:id", h.handleRemove)

	e.GET("/realtime", h.handleRealtime)
}

// handleView dispatches a navigation token, the server-side equivalent
// of the hash router. Unrecognized tokens land on the landing view.
func (h *Handler) handleView(c echo.Context) error {
	view, id := wanderlust.ParseViewToken(c.Param("*"))

	switch view {
	case wanderlust.ViewTrip:
		return h.renderItem(c, wanderlust.KindTrip, id)
	case wanderlust.ViewRecipe:
		return h.renderItem(c, wanderlust.KindRecipe, id)
	case wanderlust.ViewRecipeList:
		return h.handleRecipeList(c)
	case wanderlust.ViewAdmin:
		return h.handleAdmin(c)
	default:
		return h.renderLanding(c)
	}
}

func (h *Handler) handleLanding(c echo.Context) error {
	return h.renderLanding(c)
}

func (h *Handler) handleTrip(c echo.Context) error {
	return h.renderItem(c, wanderlust.KindTrip, c.Param("id"))
}

func (h *Handler) handleRecipe(c echo.Context) error {
	return h.renderItem(c, wanderlust.KindRecipe, c.Param("id"))
}

func (h *Handler) renderLanding(c echo.Context) error {
	data := h.content.Snapshot()
	page := Page{
		Site:  h.site,
		Trips: wanderlust.SortedByDate(data.Trips),
	}
	return h.views.Render(c, "landing.html", "home", wanderlust.Sum(data), page)
}

// renderItem shows a detail view. A dangling or deleted id falls back
// to the landing view, never an error page.
func (h *Handler) renderItem(c echo.Context, kind wanderlust.Kind, id string) error {
	item, err := h.content.Item(kind, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return h.renderLanding(c)
		}
		return err
	}

	data := h.content.Snapshot()
	page := Page{
		Site:  h.site,
		Trips: wanderlust.SortedByDate(data.Trips),
		Item:  item,
	}

	name := "trip.html"
	view := wanderlust.ViewTrip
	if kind.Name == wanderlust.KindRecipe.Name {
		name = "recipe.html"
		view = wanderlust.ViewRecipe
	}
	token := wanderlust.ComposeViewToken(view, id)
	return h.views.Render(c, name, token, wanderlust.Sum(data), page)
}

func (h *Handler) handleRecipeList(c echo.Context) error {
	data := h.content.Snapshot()
	page := Page{
		Site:    h.site,
		Trips:   wanderlust.SortedByDate(data.Trips),
		Recipes: wanderlust.SortedByDate(data.Recipes),
	}
	return h.views.Render(c, "recipes.html", "recipes", wanderlust.Sum(data), page)
}

func (h *Handler) handleAdmin(c echo.Context) error {
	ok, msg := h.content.SyncStatus()
	data := h.content.Snapshot()
	page := Page{
		Site:        h.site,
		Trips:       wanderlust.SortedByDate(data.Trips),
		SignedIn:    requesterEmail(c) != "",
		SyncOK:      ok,
		SyncMessage: msg,
	}
	return h.views.RenderDirect(c, "admin.html", page)
}

func (h *Handler) handleData(c echo.Context) error {
	if requesterEmail(c) == "" {
		return presenter.Unauthorized(c, "sign in required")
	}
	return presenter.OK(c, h.content.Snapshot())
}

func (h *Handler) handleSyncStatus(c echo.Context) error {
	if requesterEmail(c) == "" {
		return presenter.Unauthorized(c, "sign in required")
	}
	ok, msg := h.content.SyncStatus()
	return presenter.OK(c, echo.Map{"ok": ok, "message": msg})
}

func (h *Handler) handleUpsert(c echo.Context) error {
	ctx := c.Request().Context()

	if requesterEmail(c) == "" {
		return presenter.Unauthorized(c, "sign in required")
	}

	kind, ok := wanderlust.KindByName(c.Param("kind"))
	if !ok {
		return presenter.BadRequestMessage(c, "unknown collection kind")
	}

	var draft wanderlust.ContentItem
	if err := c.Bind(&draft); err != nil {
		return presenter.BadRequest(c, err)
	}

	// PUT addresses an existing item; the id in the path wins.
	if id := c.Param("id"); id != "" {
		draft.ID = id
	}

	item, err := h.content.Upsert(ctx, kind, draft)
	if err != nil {
		var verr wanderlust.ValidationError
		if errors.As(err, &verr) {
			return presenter.BadRequest(c, err)
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, item)
}

func (h *Handler) handleRemove(c echo.Context) error {
	ctx := c.Request().Context()

	if requesterEmail(c) == "" {
		return presenter.Unauthorized(c, "sign in required")
	}

	kind, ok := wanderlust.KindByName(c.Param("kind"))
	if !ok {
		return presenter.BadRequestMessage(c, "unknown collection kind")
	}

	if err := h.content.Remove(ctx, kind, c.Param("id")); err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, echo.Map{"status": "ok"})
}

// handleUpload converts an uploaded image into a data URI for use as a
// cover image or an image block.
func (h *Handler) handleUpload(c echo.Context) error {
	if requesterEmail(c) == "" {
		return presenter.Unauthorized(c, "sign in required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return presenter.BadRequestMessage(c, "file field is required")
	}
	if file.Size > maxUploadBytes {
		return presenter.BadRequestMessage(c, "image exceeds the 8 MiB limit")
	}

	src, err := file.Open()
	if err != nil {
		return presenter.InternalError(c, err)
	}
	defer src.Close()

	raw, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	if len(raw) > maxUploadBytes {
		return presenter.BadRequestMessage(c, "image exceeds the 8 MiB limit")
	}

	mime := http.DetectContentType(raw)
	if !strings.HasPrefix(mime, "image/") {
		return presenter.BadRequestMessage(c, "only image uploads are accepted")
	}

	dataURI := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw))
	return presenter.OK(c, echo.Map{"dataUri": dataURI})
}

func requesterEmail(c echo.Context) string {
	email, _ := c.Request().Context().Value(domain.RequesterEmailCtxKey).(string)
	return email
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type string `json:"type"`
}

// handleRealtime streams content change events to the admin editor so
// a second window (or client) sees edits as they land.
func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return presenter.NotFound(c, "realtime is not configured")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan wanderlust.Event)

	go h.signal.Realtime(ctx, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				close(quit)
				break
			}

			switch req.Type {
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
