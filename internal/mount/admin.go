package mount

import (
	"bytes"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"tailscale.com/tsweb"
)

// Modeled directly on SerialMux.AttachAdminRoutes (internal/serialmux/serialmux.go)
// and its tsweb.Debugger usage: handlers are registered under /debug/,
// restricted to loopback/Tailscale callers. The send-frame form is an
// original minimal HTML form rather than a copy of an existing template.

//go:embed templates/*
var adminTemplateFS embed.FS

var sendFrameTemplate = template.Must(template.ParseFS(adminTemplateFS, "templates/send-frame.html.tmpl"))

type adminStateView struct {
	State        string                `json:"state"`
	Pointing     *EquatorialCoordinate `json:"pointing"`
	SiteLocation *GeodeticCoordinate   `json:"site_location"`
}

// AttachAdminRoutes attaches the debug/admin HTTP surface to mux, gated
// to loopback/Tailscale callers by tsweb.Debugger.
func (c *MountController) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("state", "render current mount state, pointing coordinate, and site location as JSON", func(w http.ResponseWriter, r *http.Request) {
		// encoding/json rejects NaN, so the unknown sentinel renders as null.
		view := adminStateView{State: c.GetTelescopeState().String()}
		if p := c.GetPointingCoordinates(); !p.isUnknown() {
			view.Pointing = &p
		}
		if s := c.GetSiteLocation(); !float32IsNaN(s.Lat) && !float32IsNaN(s.Lon) {
			view.SiteLocation = &s
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view)
	})

	debug.HandleFunc("send-frame", "form to manually encode and send a single command frame", func(w http.ResponseWriter, r *http.Request) {
		buf := bytes.NewBuffer(nil)
		if err := sendFrameTemplate.Execute(buf, nil); err != nil {
			http.Error(w, "failed to render template", http.StatusInternalServerError)
			return
		}
		io.Copy(w, buf)
	})

	debug.HandleSilentFunc("send-frame-api", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := c.handleSendFrameAPI(r); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		io.WriteString(w, "ok")
	})

	debug.HandleSilentFunc("tail", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		id, ch := c.Subscribe()
		defer c.Unsubscribe(id)

		w.Write([]byte(": ping\n\n"))
		w.(http.Flusher).Flush()

		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if _, err := w.Write([]byte(fmt.Sprintf("data: %s\n\n", payload))); err != nil {
					return
				}
				w.(http.Flusher).Flush()
			case <-r.Context().Done():
				return
			}
		}
	})

	debug.HandleFunc("ring-hexdump", "render the current contents of the receive ring buffer as a hex dump", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, hex.Dump(c.ringSnapshot()))
	})
}

func (c *MountController) handleSendFrameAPI(r *http.Request) error {
	command := r.FormValue("command")
	switch command {
	case "park":
		return c.ParkPosition()
	case "stop-motion":
		return c.StopMotion()
	case "goto":
		ra, dec, err := parseEquatorialForm(r)
		if err != nil {
			return err
		}
		return c.GoTo(ra, dec)
	case "sync":
		ra, dec, err := parseEquatorialForm(r)
		if err != nil {
			return err
		}
		return c.Sync(ra, dec)
	case "set-site-location":
		lat, lon, err := parseGeodeticForm(r)
		if err != nil {
			return err
		}
		return c.SetSiteLocation(lat, lon)
	case "get-site-location":
		return c.RequestSiteLocation()
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func parseEquatorialForm(r *http.Request) (ra, dec float32, err error) {
	raVal, err := strconv.ParseFloat(r.FormValue("ra"), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid ra: %w", err)
	}
	decVal, err := strconv.ParseFloat(r.FormValue("dec"), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid dec: %w", err)
	}
	return float32(raVal), float32(decVal), nil
}

func parseGeodeticForm(r *http.Request) (lat, lon float32, err error) {
	latVal, err := strconv.ParseFloat(r.FormValue("lat"), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lat: %w", err)
	}
	lonVal, err := strconv.ParseFloat(r.FormValue("lon"), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid lon: %w", err)
	}
	return float32(latVal), float32(lonVal), nil
}
