// Package input maps glfw keys and mouse buttons to viewer actions.
package input

import (
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Action represents a logical viewer action, not a physical key
type Action int

const (
	ActionMoveForward Action = iota
	ActionMoveBackward
	ActionMoveLeft
	ActionMoveRight
	ActionMoveUp
	ActionMoveDown
	ActionFast
	ActionToggleWireframe
	ActionToggleOverlay
	ActionQuit
	ActionRemoveVoxel
	ActionPlaceVoxel
	ActionCount // Sentinel value for array sizing
)

// InputManager tracks held actions, per-frame edges and mouse motion.
type InputManager struct {
	mu sync.RWMutex

	keyToActions         map[glfw.Key][]Action
	mouseButtonToActions map[glfw.MouseButton][]Action

	currentState [ActionCount]bool
	justPressed  [ActionCount]bool

	lastX, lastY   float64
	dx, dy         float64
	haveCursorBase bool
}

// NewInputManager creates a new InputManager with default key bindings
func NewInputManager() *InputManager {
	im := &InputManager{
		keyToActions:         make(map[glfw.Key][]Action),
		mouseButtonToActions: make(map[glfw.MouseButton][]Action),
	}

	im.BindKey(glfw.KeyW, ActionMoveForward)
	im.BindKey(glfw.KeyS, ActionMoveBackward)
	im.BindKey(glfw.KeyA, ActionMoveLeft)
	im.BindKey(glfw.KeyD, ActionMoveRight)
	im.BindKey(glfw.KeySpace, ActionMoveUp)
	im.BindKey(glfw.KeyLeftShift, ActionMoveDown)
	im.BindKey(glfw.KeyLeftControl, ActionFast)
	im.BindKey(glfw.KeyF, ActionToggleWireframe)
	im.BindKey(glfw.KeyV, ActionToggleOverlay)
	im.BindKey(glfw.KeyEscape, ActionQuit)

	im.BindMouseButton(glfw.MouseButtonLeft, ActionRemoveVoxel)
	im.BindMouseButton(glfw.MouseButtonRight, ActionPlaceVoxel)
	return im
}

// BindKey binds a physical key to a logical action
func (im *InputManager) BindKey(key glfw.Key, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	im.mu.Lock()
	im.keyToActions[key] = append(im.keyToActions[key], action)
	im.mu.Unlock()
}

// BindMouseButton binds a mouse button to a logical action
func (im *InputManager) BindMouseButton(button glfw.MouseButton, action Action) {
	if action < 0 || action >= ActionCount {
		return
	}
	im.mu.Lock()
	im.mouseButtonToActions[button] = append(im.mouseButtonToActions[button], action)
	im.mu.Unlock()
}

func (im *InputManager) apply(actions []Action, pressed bool) {
	im.mu.Lock()
	for _, act := range actions {
		// Detect edges immediately when event arrives
		if pressed && !im.currentState[act] {
			im.justPressed[act] = true
		}
		im.currentState[act] = pressed
	}
	im.mu.Unlock()
}

// Attach installs the key, mouse button and cursor callbacks on window.
func (im *InputManager) Attach(window *glfw.Window) {
	window.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		im.mu.RLock()
		actions := im.keyToActions[key]
		im.mu.RUnlock()
		im.apply(actions, action == glfw.Press || action == glfw.Repeat)
	})
	window.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		im.mu.RLock()
		actions := im.mouseButtonToActions[button]
		im.mu.RUnlock()
		im.apply(actions, action == glfw.Press)
	})
	window.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		im.mu.Lock()
		if im.haveCursorBase {
			im.dx += x - im.lastX
			im.dy += y - im.lastY
		}
		im.lastX, im.lastY = x, y
		im.haveCursorBase = true
		im.mu.Unlock()
	})
}

// MouseDelta returns cursor motion accumulated since the last PostUpdate.
func (im *InputManager) MouseDelta() (float64, float64) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.dx, im.dy
}

// PostUpdate must be called at the end of each frame to reset edges and motion
func (im *InputManager) PostUpdate() {
	im.mu.Lock()
	defer im.mu.Unlock()
	clear(im.justPressed[:])
	im.dx, im.dy = 0, 0
}

// IsActive returns true if the action is currently being held down
func (im *InputManager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.currentState[action]
}

// JustPressed returns true only if the action was pressed in the current frame
func (im *InputManager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.justPressed[action]
}
