package entities

import "fmt"

// Identity identifies a node inside a site. It never changes while the
// process runs and every topic name is derived from it.
type Identity struct {
	Site string `json:"site"`
	Node string `json:"node"`
}

func (id Identity) String() string { return id.Site + "/" + id.Node }

// Topics holds the four MQTT topics a node talks on.
type Topics struct {
	Telemetry string
	Status    string
	Control   string
	Command   string
}

// TopicsFor builds the farm/{site}/{node}/* topic set.
func TopicsFor(id Identity) Topics {
	base := fmt.Sprintf("farm/%s/%s", id.Site, id.Node)
	return Topics{
		Telemetry: base + "/telemetry",
		Status:    base + "/status",
		Control:   base + "/control",
		Command:   base + "/cmd",
	}
}
