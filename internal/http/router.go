package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Slots         *SlotHandler
	Notifications *NotificationHandler
	Settings      *SettingsHandler
	Admin         *AdminHandler
	Realtime      http.Handler
	Metrics       http.Handler
	Middleware    []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Slots != nil {
		mux.HandleFunc("/slots", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Slots.List(w, r)
			case http.MethodPost:
				cfg.Slots.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/slots/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/slots/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithSlotID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodPut:
				cfg.Slots.Update(w, r)
			case http.MethodDelete:
				cfg.Slots.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Notifications != nil {
		mux.HandleFunc("/notifications", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Notifications.List(w, r)
			case http.MethodPost:
				cfg.Notifications.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/notifications/milestones", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Notifications.GenerateMilestones(w, r)
		})
		mux.HandleFunc("/notifications/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/notifications/")
			id, ok := strings.CutSuffix(rest, "/read")
			if !ok || id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			ctx := ContextWithNotificationID(r.Context(), id)
			cfg.Notifications.MarkRead(w, r.WithContext(ctx))
		})
	}

	if cfg.Settings != nil {
		mux.HandleFunc("/settings/", func(w http.ResponseWriter, r *http.Request) {
			passCode := strings.TrimPrefix(r.URL.Path, "/settings/")
			if passCode == "" || strings.Contains(passCode, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithPassCode(r.Context(), passCode)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Settings.Get(w, r)
			case http.MethodPut:
				cfg.Settings.Put(w, r)
			case http.MethodPatch:
				cfg.Settings.Patch(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch)
			}
		})
	}

	if cfg.Admin != nil {
		mux.HandleFunc("/admin/broadcast", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Admin.Broadcast(w, r)
		})
		mux.HandleFunc("/admin/onboard", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Admin.Onboard(w, r)
		})
		mux.HandleFunc("/admin/actions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Admin.ListActions(w, r)
		})
	}

	if cfg.Realtime != nil {
		mux.Handle("/ws", cfg.Realtime)
	}
	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
