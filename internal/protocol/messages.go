package protocol

// HELLO (observer client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ObserverName    string `json:"observer_name"`
}

// WELCOME (server -> observer)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	ObserverID      string      `json:"observer_id"`
	WorldParams     WorldParams `json:"world_params"`
	Catalogs        Digests     `json:"catalogs"`
}

type WorldParams struct {
	TickRateHz int    `json:"tick_rate_hz"`
	ChunkSize  [2]int `json:"chunk_size"`
	Seed       int64  `json:"seed"`
	BoundaryR  int    `json:"boundary_r"`
}

type Digests struct {
	Materials  string `json:"materials_digest"`
	Resources  string `json:"resources_digest"`
	Blueprints string `json:"blueprints_digest"`
}

// FRAME (server -> observer, once per tick with activity)
type FrameMsg struct {
	Type   string     `json:"type"`
	Tick   uint64     `json:"tick"`
	Events []Event    `json:"events,omitempty"`
	World  WorldFrame `json:"world"`
}

type WorldFrame struct {
	Agents       int     `json:"agents"`
	Rooms        int     `json:"rooms"`
	OpenTasks    int     `json:"open_tasks"`
	Resources    int     `json:"resources"`
	AmbientTempC float64 `json:"ambient_temp_c"`
	StepMS       float64 `json:"step_ms"`
}
