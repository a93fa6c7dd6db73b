package rest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"

	"github.com/caltha/wanderlust"
	"github.com/caltha/wanderlust/internal/config"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page is the data handed to every view template.
type Page struct {
	Site        config.Site
	Trips       []wanderlust.ContentItem
	Recipes     []wanderlust.ContentItem
	Item        wanderlust.ContentItem
	SignedIn    bool
	SyncOK      bool
	SyncMessage string
}

// Views renders the site templates. Pages are executed into a buffer
// first so a failed render never writes partial markup, and public
// pages are cached in memcached keyed by view token and snapshot sum,
// which self-invalidates on any content mutation.
type Views struct {
	tpl  *template.Template
	mc   *memcache.Client
	site config.Site
}

func NewViews(site config.Site, mc *memcache.Client) (*Views, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Views{tpl: tpl, mc: mc, site: site}, nil
}

const pageCacheSeconds = 300

func (v *Views) Render(c echo.Context, name string, token string, sum uint64, page Page) error {

	key := fmt.Sprintf("page:%s:%d", strings.ReplaceAll(token, "/", ":"), sum)

	if v.mc != nil {
		if item, err := v.mc.Get(key); err == nil {
			return c.HTMLBlob(http.StatusOK, item.Value)
		}
	}

	var buf bytes.Buffer
	if err := v.tpl.ExecuteTemplate(&buf, name, page); err != nil {
		return err
	}

	if v.mc != nil {
		_ = v.mc.Set(&memcache.Item{
			Key:        key,
			Value:      buf.Bytes(),
			Expiration: pageCacheSeconds,
		})
	}

	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// RenderDirect skips the page cache, for views that depend on the
// requester.
func (v *Views) RenderDirect(c echo.Context, name string, page Page) error {
	var buf bytes.Buffer
	if err := v.tpl.ExecuteTemplate(&buf, name, page); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// ErrorHandler is the echo error handler. Any failure that escapes a
// handler surfaces here as a blocking error page carrying the message.
func (v *Views) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		msg = fmt.Sprintf("%v", he.Message)
	}

	var buf bytes.Buffer
	page := Page{Site: v.site, Item: wanderlust.ContentItem{Title: msg}}
	if tplErr := v.tpl.ExecuteTemplate(&buf, "error.html", page); tplErr != nil {
		_ = c.String(code, msg)
		return
	}
	_ = c.HTMLBlob(code, buf.Bytes())
}
