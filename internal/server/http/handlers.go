package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/autopeer-io/sensorlink/internal/device"
	apiv1 "github.com/autopeer-io/sensorlink/pkg/apis/sensorlink/v1"
	"github.com/autopeer-io/sensorlink/pkg/log"
)

const maxBodyBytes = 1 << 20

func (s *Server) listDevices(w http.ResponseWriter, _ *http.Request) {
	list := apiv1.DeviceList{Items: []apiv1.Device{}}
	for _, d := range s.manager.List() {
		list.Items = append(list.Items, toAPIDevice(d.Snapshot()))
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) connectDevice(w http.ResponseWriter, r *http.Request) {
	var req apiv1.ConnectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	id := device.Identity{Endpoint: req.Endpoint, Peer: req.Peer}
	if err := id.Validate(); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.manager.Connect(r.Context(), id, req.Subscriptions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAPIDevice(d.Snapshot()))
}

func (s *Server) getDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAPIDevice(d.Snapshot()))
}

func (s *Server) disconnectDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.manager.Disconnect(r.Context(), d.ID()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	d, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	snap := d.Snapshot()
	writeJSON(w, http.StatusOK, apiv1.DeviceStatus{
		Cumulative: snap.CumulativeStatus,
		Last:       snap.LastStatus,
	})
}

func (s *Server) postCommand(w http.ResponseWriter, r *http.Request) {
	d, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req apiv1.CommandRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := d.Execute(r.Context(), &req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// streamEvents streams the device's events as server-sent events until the
// client goes away or the device is disconnected.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	d, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorResponse(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	id := d.ID()
	sub := s.manager.Subscribe(0, func(ev device.Event) bool { return ev.Device == id })
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				log.FromContext(r.Context()).Error(err, "Failed to encode device event", "device", id.String())
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Seq, ev.Type, data); err != nil {
				return
			}
			flusher.Flush()
			if ev.Type == device.EventDisconnected && d.State() == device.StateDisconnected {
				return
			}
		}
	}
}

// lookup resolves the device named by the endpoint path variable. The
// optional peer query parameter selects among devices sharing an endpoint.
func (s *Server) lookup(r *http.Request) (*device.Device, error) {
	endpoint := mux.Vars(r)["endpoint"]
	peer := r.URL.Query().Get("peer")
	if peer == "" {
		return s.manager.Find(endpoint)
	}

	id := device.Identity{Endpoint: endpoint, Peer: peer}
	d, ok := s.manager.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, id)
	}
	return d, nil
}

func toAPIDevice(snap device.Snapshot) apiv1.Device {
	out := apiv1.Device{
		Endpoint:             snap.ID.Endpoint,
		Peer:                 snap.ID.Peer,
		State:                string(snap.State),
		ReconnectProbeTime:   snap.ReconnectProbeTime,
		DeviceIdentification: snap.DeviceIdentification,
		ActiveSensor:         snap.ActiveSensor,
		Subscriptions:        snap.Subscriptions,
	}
	if !snap.LastContactTime.IsZero() {
		t := snap.LastContactTime
		out.LastContactTime = &t
	}
	for _, s := range snap.Sensors {
		out.Sensors = append(out.Sensors, apiv1.Sensor{
			Configuration: s.Configuration,
			Status:        s.Status,
			BIT:           s.BIT,
		})
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusFor maps device errors to HTTP status codes.
func statusFor(err error) int {
	var verr *device.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, device.ErrDeviceNotFound):
		return http.StatusNotFound
	case errors.Is(err, device.ErrAlreadyConnected):
		return http.StatusConflict
	case device.IsPrecondition(err):
		return http.StatusPreconditionFailed
	case errors.Is(err, device.ErrDetached):
		return http.StatusGone
	case errors.Is(err, device.ErrSendFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := apiv1.ErrorResponse{Message: err.Error()}
	var verr *device.ValidationError
	if errors.As(err, &verr) {
		for _, e := range verr.Errs {
			resp.Details = append(resp.Details, e.Error())
		}
	}
	writeJSON(w, statusFor(err), resp)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiv1.ErrorResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(err, "Failed to encode response")
	}
}
