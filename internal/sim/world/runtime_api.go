package world

import (
	"fmt"

	"tilecolony/internal/protocol"
)

// CommandKind selects the operation a Command performs.
type CommandKind string

const (
	CmdSpawnAgent    CommandKind = "spawn_agent"
	CmdCreateTask    CommandKind = "create_task"
	CmdAssignBuilder CommandKind = "assign_builder"
	CmdCancelTask    CommandKind = "cancel_task"
	CmdOrderHarvest  CommandKind = "order_harvest"
	CmdOrderDemolish CommandKind = "order_demolish"
	CmdMoveAgent     CommandKind = "move_agent"
	CmdAddContainer  CommandKind = "add_container"
)

// Command is the only way external goroutines mutate the world. Commands are
// queued and applied at the start of the next tick, in arrival order.
type Command struct {
	Kind CommandKind

	AgentID     string
	AgentName   string
	TaskID      string
	BlueprintID string
	ResourceID  string
	Pos         Vec2i
	Rotation    int
	CutLevel    int
	Tolerance   int

	// Items pre-stocks a container created via CmdAddContainer.
	Items map[string]int

	// Reply, when non-nil, receives the command outcome exactly once.
	Reply chan CommandResult
}

type CommandResult struct {
	OK      bool
	Code    string // E_* on failure
	AgentID string // spawn_agent
	TaskID  string // create_task
	Err     string
}

// Enqueue submits a command to the world loop. It never blocks the caller
// past the channel buffer; a full queue is a failed enqueue.
func (w *World) Enqueue(cmd Command) bool {
	select {
	case w.cmds <- cmd:
		return true
	default:
		return false
	}
}

func (w *World) applyCommand(cmd Command, nowTick uint64) CommandResult {
	switch cmd.Kind {
	case CmdSpawnAgent:
		if !w.graph.InBounds(cmd.Pos) {
			return failResult(protocol.ErrOutOfBounds, fmt.Sprintf("spawn at (%d,%d)", cmd.Pos.X, cmd.Pos.Y))
		}
		a := w.SpawnAgent(cmd.AgentName, cmd.Pos)
		return CommandResult{OK: true, AgentID: a.ID}

	case CmdCreateTask:
		ct, err := w.CreateConstructionTask(cmd.BlueprintID, cmd.Pos, cmd.Rotation, nowTick)
		if err != nil {
			return failResult(protocol.ErrBadRequest, err.Error())
		}
		return CommandResult{OK: true, TaskID: ct.TaskID}

	case CmdAssignBuilder:
		if err := w.AssignBuilder(cmd.AgentID, cmd.TaskID); err != nil {
			return failResult(protocol.ErrTaskNotFound, err.Error())
		}
		return CommandResult{OK: true, TaskID: cmd.TaskID}

	case CmdCancelTask:
		if err := w.CancelConstructionTask(cmd.TaskID, nowTick); err != nil {
			return failResult(protocol.ErrTaskNotFound, err.Error())
		}
		return CommandResult{OK: true, TaskID: cmd.TaskID}

	case CmdOrderHarvest:
		a, ok := w.agents[cmd.AgentID]
		if !ok {
			return failResult(protocol.ErrBadRequest, "unknown agent "+cmd.AgentID)
		}
		if err := w.OrderHarvest(a, cmd.ResourceID, cmd.CutLevel, nowTick); err != nil {
			return failResult(protocol.ErrNoResource, err.Error())
		}
		return CommandResult{OK: true}

	case CmdOrderDemolish:
		a, ok := w.agents[cmd.AgentID]
		if !ok {
			return failResult(protocol.ErrBadRequest, "unknown agent "+cmd.AgentID)
		}
		if err := w.OrderDemolish(a, cmd.Pos, nowTick); err != nil {
			return failResult(protocol.ErrBadRequest, err.Error())
		}
		return CommandResult{OK: true}

	case CmdMoveAgent:
		a, ok := w.agents[cmd.AgentID]
		if !ok {
			return failResult(protocol.ErrBadRequest, "unknown agent "+cmd.AgentID)
		}
		if !w.graph.InBounds(cmd.Pos) {
			return failResult(protocol.ErrOutOfBounds, fmt.Sprintf("target (%d,%d)", cmd.Pos.X, cmd.Pos.Y))
		}
		w.MoveTo(a, cmd.Pos, cmd.Tolerance, nowTick)
		return CommandResult{OK: true}

	case CmdAddContainer:
		if !w.graph.InBounds(cmd.Pos) {
			return failResult(protocol.ErrOutOfBounds, fmt.Sprintf("container at (%d,%d)", cmd.Pos.X, cmd.Pos.Y))
		}
		w.ensureChunkAt(cmd.Pos)
		c := w.containers.AddContainer(cmd.Pos)
		for item, n := range cmd.Items {
			if n > 0 {
				c.Items[item] += n
			}
		}
		return CommandResult{OK: true}
	}

	return failResult(protocol.ErrBadRequest, "unknown command "+string(cmd.Kind))
}

func failResult(code, msg string) CommandResult {
	return CommandResult{OK: false, Code: code, Err: msg}
}

// observerJoinReq registers an observer output channel with the world loop.
type observerJoinReq struct {
	Name  string
	Reply chan ObserverHandle
}

// ObserverHandle is what a transport holds to receive per-tick frames.
type ObserverHandle struct {
	ID      string
	Welcome protocol.WelcomeMsg
	Frames  <-chan []byte
}

// JoinObserver registers an observer and returns its welcome + frame stream.
// Blocks until the world loop services the request or the world stops.
func (w *World) JoinObserver(name string) (ObserverHandle, error) {
	reply := make(chan ObserverHandle, 1)
	select {
	case w.observerJoin <- observerJoinReq{Name: name, Reply: reply}:
	case <-w.stop:
		return ObserverHandle{}, fmt.Errorf("world stopped")
	}
	select {
	case h := <-reply:
		return h, nil
	case <-w.stop:
		return ObserverHandle{}, fmt.Errorf("world stopped")
	}
}

// LeaveObserver unregisters an observer. Safe to call after world stop.
func (w *World) LeaveObserver(id string) {
	select {
	case w.observerLeave <- id:
	case <-w.stop:
	}
}
