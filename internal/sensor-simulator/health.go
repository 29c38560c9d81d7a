package sensor_simulator

import (
	"encoding/json"
	"net/http"
)

// ConnChecker reports whether the transport session is up.
type ConnChecker interface {
	IsConnectionOpen() bool
}

type healthHandler struct {
	conn ConnChecker
	node *NodeSimulator
}

func NewHealthHandler(conn ConnChecker, node *NodeSimulator) http.Handler {
	return &healthHandler{conn: conn, node: node}
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	type status struct {
		Status        string `json:"status"`
		MQTTConnected bool   `json:"mqtt_connected"`
		Online        bool   `json:"online"`
		Mode          string `json:"mode"`
		IrrigationOn  bool   `json:"irrigation_on"`
		Reason        string `json:"reason,omitempty"`
	}
	snap := h.node.State()
	st := status{
		MQTTConnected: h.conn != nil && h.conn.IsConnectionOpen(),
		Online:        h.node.Liveness().IsOnline(),
		Mode:          snap.Mode.Name(),
		IrrigationOn:  snap.IrrigationOn,
		Reason:        snap.Reason,
	}
	switch {
	case st.MQTTConnected && st.Online:
		st.Status = "ok"
	case st.MQTTConnected || st.Online:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}

	w.Header().Set("Content-Type", "application/json")
	if st.Status == "down" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(st)
}
