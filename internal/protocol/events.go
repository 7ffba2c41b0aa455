package protocol

// Event type names emitted by the simulation. Consumers (rendering,
// telemetry) subscribe by these names over the observer stream.
const (
	EvAgentSpawned      = "agent:spawned"
	EvTaskCreated       = "construction:task_created"
	EvMaterialDelivered = "construction:material_delivered"
	EvTilePlaced        = "construction:tile_placed"
	EvTaskCompleted     = "construction:task_completed"
	EvTaskCancelled     = "construction:task_cancelled"
	EvTreeFelled        = "tree:felled"
	EvDoorOpened        = "door:opened"
	EvDoorClosed        = "door:closed"
	EvTileWritten       = "tile:placed"
	EvXPGained          = "progression:xp_gained"
	EvRelationship      = "social:relationship_improved"
	EvRoomScanTruncated = "rooms:scan_truncated"
	EvBehaviorFailed    = "behavior:failed"
)
