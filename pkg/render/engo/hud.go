// pkg/render/engo/hud.go
package engo

import (
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-bumpmap/pkg/event"
)

const (
	gaugeWidth  = 200
	gaugeHeight = 12
	flashFor    = 250 * time.Millisecond
)

// HUDMessage is one line of the HUD event log
type HUDMessage struct {
	Text      string
	Timestamp time.Time
	Color     color.Color
}

// HUDSystem draws a mean-belief gauge, a collision indicator and, when a
// font is set, a status line plus recent collision and checkpoint messages.
type HUDSystem struct {
	renderSystem *common.RenderSystem
	bus          *event.Bus
	subs         []*event.Subscription

	mu          sync.Mutex
	tick        uint64
	meanBelief  float64
	collisions  int
	lastFlash   time.Time
	messages    []HUDMessage
	maxMessages int

	font     *common.Font
	gaugeBg  *sprite
	gaugeBar *sprite
	flash    *sprite
	status   *sprite
	log      *sprite

	hudColor   color.Color
	okColor    color.Color
	alertColor color.Color
	now        func() time.Time
}

// NewHUDSystem creates a HUD fed by events published on bus.
func NewHUDSystem(rs *common.RenderSystem, bus *event.Bus) *HUDSystem {
	hud := &HUDSystem{
		renderSystem: rs,
		bus:          bus,
		maxMessages:  8,
		hudColor:     color.RGBA{255, 255, 255, 255},
		okColor:      color.RGBA{0, 200, 0, 255},
		alertColor:   color.RGBA{255, 60, 60, 255},
		now:          time.Now,
	}
	if bus != nil {
		hud.subs = append(hud.subs,
			bus.Subscribe(event.TickCompleted, hud.onTick),
			bus.Subscribe(event.CollisionDetected, hud.onCollision),
			bus.Subscribe(event.CheckpointSaved, hud.onCheckpoint),
			bus.Subscribe(event.CheckpointFailed, hud.onCheckpoint),
		)
	}
	return hud
}

func (hud *HUDSystem) onTick(e event.Event) {
	te, ok := e.(*event.TickEvent)
	if !ok {
		return
	}
	hud.mu.Lock()
	defer hud.mu.Unlock()
	hud.tick = te.Tick
	hud.meanBelief = te.MeanBelief
	hud.collisions += te.Collisions
}

func (hud *HUDSystem) onCollision(e event.Event) {
	ce, ok := e.(*event.CollisionEvent)
	if !ok {
		return
	}
	hud.mu.Lock()
	defer hud.mu.Unlock()
	hud.lastFlash = hud.now()
	hud.addMessageLocked(fmt.Sprintf("tick %d: agent %d hit (score %.0f)", ce.Tick, ce.AgentID, ce.Score), hud.alertColor)
}

func (hud *HUDSystem) onCheckpoint(e event.Event) {
	ce, ok := e.(*event.CheckpointEvent)
	if !ok {
		return
	}
	hud.mu.Lock()
	defer hud.mu.Unlock()
	if ce.Err != nil {
		hud.addMessageLocked(fmt.Sprintf("tick %d: checkpoint failed", ce.Tick), hud.alertColor)
		return
	}
	hud.addMessageLocked(fmt.Sprintf("tick %d: snapshot %d saved", ce.Tick, ce.SnapshotID), hud.okColor)
}

func (hud *HUDSystem) addMessageLocked(text string, c color.Color) {
	hud.messages = append(hud.messages, HUDMessage{Text: text, Timestamp: hud.now(), Color: c})
	if len(hud.messages) > hud.maxMessages {
		hud.messages = hud.messages[len(hud.messages)-hud.maxMessages:]
	}
}

// Messages returns a copy of the recent message log, oldest first.
func (hud *HUDSystem) Messages() []HUDMessage {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	return append([]HUDMessage(nil), hud.messages...)
}

// StatusLine formats the current tick, collision total and mean belief.
func (hud *HUDSystem) StatusLine() string {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	return fmt.Sprintf("tick %d  collisions %d  mean belief %.3f", hud.tick, hud.collisions, hud.meanBelief)
}

// gaugeFill returns the filled width of the mean-belief gauge.
func (hud *HUDSystem) gaugeFill() float32 {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	return float32(min(max(hud.meanBelief, 0), 1)) * gaugeWidth
}

// flashing reports whether a collision happened recently enough to light
// the indicator.
func (hud *HUDSystem) flashing() bool {
	hud.mu.Lock()
	defer hud.mu.Unlock()
	return !hud.lastFlash.IsZero() && hud.now().Sub(hud.lastFlash) < flashFor
}

// SetFont enables the text lines.
func (hud *HUDSystem) SetFont(font *common.Font) {
	hud.font = font
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update refreshes the HUD entities.
func (hud *HUDSystem) Update(dt float32) {
	if hud.gaugeBg == nil {
		hud.setup()
	}

	hud.gaugeBar.Width = hud.gaugeFill()
	if hud.flashing() {
		hud.flash.Color = hud.alertColor
	} else {
		hud.flash.Color = color.Transparent
	}

	if hud.font == nil {
		return
	}
	hud.status.Drawable = common.Text{Font: hud.font, Text: hud.StatusLine()}
	var lines string
	for _, m := range hud.Messages() {
		lines += m.Text + "\n"
	}
	hud.log.Drawable = common.Text{Font: hud.font, Text: lines}
}

func (hud *HUDSystem) setup() {
	y := float32(engo.GameHeight()) - gaugeHeight - 10
	hud.gaugeBg = hud.addRect(10, y, gaugeWidth, gaugeHeight, color.Transparent, hud.hudColor)
	hud.gaugeBar = hud.addRect(10, y, 0, gaugeHeight, hud.alertColor, color.Transparent)
	hud.flash = hud.addRect(gaugeWidth+20, y, gaugeHeight, gaugeHeight, color.Transparent, hud.hudColor)

	if hud.font != nil {
		hud.status = hud.addText(10, 10)
		hud.log = hud.addText(10, 30)
	}
}

func (hud *HUDSystem) addRect(x, y, width, height float32, fill, border color.Color) *sprite {
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.RenderComponent = common.RenderComponent{
		Drawable: common.Rectangle{BorderWidth: 1, BorderColor: border},
		Color:    fill,
	}
	s.SetZIndex(10)
	s.SetShader(common.HUDShader)
	s.SpaceComponent = common.SpaceComponent{
		Position: engo.Point{X: x, Y: y},
		Width:    width,
		Height:   height,
	}
	hud.renderSystem.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	return s
}

func (hud *HUDSystem) addText(x, y float32) *sprite {
	s := &sprite{BasicEntity: ecs.NewBasic()}
	s.RenderComponent = common.RenderComponent{
		Drawable: common.Text{Font: hud.font},
		Color:    hud.hudColor,
	}
	s.SetZIndex(10)
	s.SetShader(common.TextHUDShader)
	s.SpaceComponent = common.SpaceComponent{Position: engo.Point{X: x, Y: y}}
	hud.renderSystem.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	return s
}

// Close unsubscribes the HUD from the event bus.
func (hud *HUDSystem) Close() {
	if hud.bus == nil {
		return
	}
	for _, sub := range hud.subs {
		hud.bus.Unsubscribe(sub)
	}
	hud.subs = nil
}
