package display

import (
	"sort"
	"sync"

	"github.com/safemap/safemap/internal/geo"
	"github.com/safemap/safemap/pkg/polyline"
)

// MemoryCanvas is a thread-safe Canvas that records everything drawn on
// it. It backs the HTTP surface (overlay state inspection) and tests.
type MemoryCanvas struct {
	mu     sync.Mutex
	nextID int

	markers   map[int]*memMarker
	polylines map[int]*memPolyline
	dots      map[int]*memDot

	center     geo.Point
	zoom       int
	fitBox     geo.BBox
	fitPadding int
	fitted     bool
}

// NewMemoryCanvas creates an empty in-memory canvas.
func NewMemoryCanvas() *MemoryCanvas {
	return &MemoryCanvas{
		markers:   make(map[int]*memMarker),
		polylines: make(map[int]*memPolyline),
		dots:      make(map[int]*memDot),
	}
}

type memMarker struct {
	canvas   *MemoryCanvas
	id       int
	position geo.Point
	label    string
}

func (m *memMarker) SetPosition(p geo.Point) {
	m.canvas.mu.Lock()
	defer m.canvas.mu.Unlock()
	m.position = p
}

func (m *memMarker) SetLabel(label string) {
	m.canvas.mu.Lock()
	defer m.canvas.mu.Unlock()
	m.label = label
}

func (m *memMarker) Remove() {
	m.canvas.mu.Lock()
	defer m.canvas.mu.Unlock()
	delete(m.canvas.markers, m.id)
}

type memPolyline struct {
	canvas *MemoryCanvas
	id     int
	coords []polyline.Coordinate
	style  LineStyle
}

func (p *memPolyline) Remove() {
	p.canvas.mu.Lock()
	defer p.canvas.mu.Unlock()
	delete(p.canvas.polylines, p.id)
}

type memDot struct {
	canvas *MemoryCanvas
	id     int
	dot    Dot
}

func (d *memDot) Remove() {
	d.canvas.mu.Lock()
	defer d.canvas.mu.Unlock()
	delete(d.canvas.dots, d.id)
}

// DrawMarker places a labeled marker.
func (c *MemoryCanvas) DrawMarker(p geo.Point, label string) Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	m := &memMarker{canvas: c, id: c.nextID, position: p, label: label}
	c.markers[m.id] = m
	return m
}

// DrawPolyline draws a styled route line.
func (c *MemoryCanvas) DrawPolyline(coords []polyline.Coordinate, style LineStyle) Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	p := &memPolyline{canvas: c, id: c.nextID, coords: coords, style: style}
	c.polylines[p.id] = p
	return p
}

// DrawDot draws a styled incident dot.
func (c *MemoryCanvas) DrawDot(dot Dot) Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	d := &memDot{canvas: c, id: c.nextID, dot: dot}
	c.dots[d.id] = d
	return d
}

// SetView records the viewport center and zoom.
func (c *MemoryCanvas) SetView(center geo.Point, zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.center = center
	c.zoom = zoom
	c.fitted = false
}

// FitBounds records the fitted viewport box.
func (c *MemoryCanvas) FitBounds(box geo.BBox, paddingPx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fitBox = box
	c.fitPadding = paddingPx
	c.fitted = true
}

// MarkerSnapshot is a point-in-time view of a drawn marker.
type MarkerSnapshot struct {
	Position geo.Point
	Label    string
}

// PolylineSnapshot is a point-in-time view of a drawn route line.
type PolylineSnapshot struct {
	Coords []polyline.Coordinate
	Style  LineStyle
}

// Markers returns the live markers in draw order.
func (c *MemoryCanvas) Markers() []MarkerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int, 0, len(c.markers))
	for id := range c.markers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]MarkerSnapshot, 0, len(ids))
	for _, id := range ids {
		m := c.markers[id]
		out = append(out, MarkerSnapshot{Position: m.position, Label: m.label})
	}
	return out
}

// Polylines returns the live route lines in draw order.
func (c *MemoryCanvas) Polylines() []PolylineSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int, 0, len(c.polylines))
	for id := range c.polylines {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]PolylineSnapshot, 0, len(ids))
	for _, id := range ids {
		p := c.polylines[id]
		out = append(out, PolylineSnapshot{Coords: p.coords, Style: p.style})
	}
	return out
}

// Dots returns the live incident dots in draw order.
func (c *MemoryCanvas) Dots() []Dot {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int, 0, len(c.dots))
	for id := range c.dots {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Dot, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.dots[id].dot)
	}
	return out
}

// View returns the current viewport: either a fitted box or a centered
// point with zoom, depending on the last viewport operation.
func (c *MemoryCanvas) View() (center geo.Point, zoom int, fitBox geo.BBox, fitted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center, c.zoom, c.fitBox, c.fitted
}
