package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/l1jgo/worldcore/internal/core/ecs"
	"github.com/l1jgo/worldcore/internal/geo"
	"github.com/l1jgo/worldcore/internal/thing"
	"github.com/l1jgo/worldcore/internal/tile"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Mover is the part of the map movement scripts act on.
type Mover interface {
	TileAt(pos geo.Position) thing.Tile
	MoveEntity(e thing.Entity, to thing.Tile, forceTeleport bool)
}

// Engine wraps a single gopher-lua VM running tile movement scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm    *lua.LState
	log   *zap.Logger
	mover Mover

	// entities whose step commands are being applied
	busy map[ecs.EntityID]struct{}
}

var _ tile.StepListener = (*Engine)(nil)

// NewEngine creates a Lua engine and loads all scripts from the given
// directory and its movement/ subdirectory. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, busy: make(map[ecs.EntityID]struct{})}
	vm.SetGlobal("log_info", vm.NewFunction(e.luaLogInfo))

	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "movement")} {
		if err := e.loadDir(dir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// Bind sets the map that step commands are applied to.
func (e *Engine) Bind(m Mover) { e.mover = m }

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source, used for inline scripts.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// StepCommand is a single action returned by a movement script.
type StepCommand struct {
	Type string // "teleport", "push_back"
	X, Y int
	Z    int
}

// OnStepIn calls Lua on_step_in(ctx) and applies the returned commands.
func (e *Engine) OnStepIn(t *tile.Tile, ent thing.Entity, from thing.Tile) {
	if _, ok := e.busy[ent.ID()]; ok {
		return
	}
	cmds := e.runStep("on_step_in", t, ent, from)
	e.apply(cmds, ent, from)
}

// OnStepOut calls Lua on_step_out(ctx). Commands are applied relative to
// the tile being left.
func (e *Engine) OnStepOut(t *tile.Tile, ent thing.Entity, to thing.Tile) {
	if _, ok := e.busy[ent.ID()]; ok {
		return
	}
	cmds := e.runStep("on_step_out", t, ent, to)
	e.apply(cmds, ent, t)
}

func (e *Engine) runStep(name string, t *tile.Tile, ent thing.Entity, other thing.Tile) []StepCommand {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return nil
	}

	pos := t.Position()
	ctx := e.vm.NewTable()
	ctx.RawSetString("action_id", lua.LNumber(t.ActionID()))
	ctx.RawSetString("x", lua.LNumber(pos.X))
	ctx.RawSetString("y", lua.LNumber(pos.Y))
	ctx.RawSetString("z", lua.LNumber(pos.Z))

	who := e.vm.NewTable()
	who.RawSetString("id", lua.LNumber(ent.ID()))
	who.RawSetString("name", lua.LString(ent.Name()))
	who.RawSetString("is_player", lua.LBool(ent.IsPlayer()))
	ctx.RawSetString("entity", who)

	if other != nil {
		op := other.Position()
		o := e.vm.NewTable()
		o.RawSetString("x", lua.LNumber(op.X))
		o.RawSetString("y", lua.LNumber(op.Y))
		o.RawSetString("z", lua.LNumber(op.Z))
		ctx.RawSetString("other", o)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, ctx); err != nil {
		e.log.Error("lua step script error",
			zap.String("func", name), zap.Uint16("action_id", t.ActionID()), zap.Error(err))
		return nil
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		return nil
	}

	var cmds []StepCommand
	rt.ForEach(func(_, v lua.LValue) {
		if row, ok := v.(*lua.LTable); ok {
			cmds = append(cmds, StepCommand{
				Type: lStr(row, "type"),
				X:    lInt(row, "x"),
				Y:    lInt(row, "y"),
				Z:    lInt(row, "z"),
			})
		}
	})
	return cmds
}

// apply runs commands in order. back is where push_back sends the entity.
// Moves made by the commands do not run further scripts for ent.
func (e *Engine) apply(cmds []StepCommand, ent thing.Entity, back thing.Tile) {
	if e.mover == nil || len(cmds) == 0 {
		return
	}
	e.busy[ent.ID()] = struct{}{}
	defer delete(e.busy, ent.ID())
	for _, c := range cmds {
		switch c.Type {
		case "teleport":
			if c.X < 0 || c.Y < 0 || c.Z < 0 || c.X > 0xFFFF || c.Y > 0xFFFF || c.Z >= geo.MaxLayers {
				e.log.Warn("lua teleport out of bounds", zap.Int("x", c.X), zap.Int("y", c.Y), zap.Int("z", c.Z))
				continue
			}
			dst := e.mover.TileAt(geo.Pos(uint16(c.X), uint16(c.Y), uint8(c.Z)))
			if dst == nil {
				e.log.Warn("lua teleport to missing tile", zap.Int("x", c.X), zap.Int("y", c.Y), zap.Int("z", c.Z))
				continue
			}
			e.mover.MoveEntity(ent, dst, true)
		case "push_back":
			if back != nil {
				e.mover.MoveEntity(ent, back, true)
			}
		default:
			e.log.Warn("unknown lua step command", zap.String("type", c.Type))
		}
	}
}

// luaLogInfo exposes log_info(msg) to scripts.
func (e *Engine) luaLogInfo(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// lInt reads an integer field from a Lua table.
func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
