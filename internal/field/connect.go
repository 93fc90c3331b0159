package field

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// ConnectionMode selects how the link pass finds close pairs.
type ConnectionMode int

const (
	// Auto uses Pairwise up to KDTreeThreshold particles, KDTree above.
	Auto ConnectionMode = iota
	Pairwise
	KDTree
	// NoLinks skips the connection pass.
	NoLinks
)

func (m ConnectionMode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Pairwise:
		return "pairwise"
	case KDTree:
		return "kdtree"
	case NoLinks:
		return "none"
	}
	return "unknown"
}

func ParseConnectionMode(s string) (ConnectionMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "pairwise":
		return Pairwise, nil
	case "kdtree":
		return KDTree, nil
	case "none":
		return NoLinks, nil
	}
	return Auto, fmt.Errorf("unknown connection mode: %s", s)
}

// Link is an unordered pair of particles closer than the link distance,
// with I < J.
type Link struct {
	I, J int
	Dist float64
}

// findLinks returns every pair with distance < maxDist in ascending (I, J)
// order, whichever mode is used.
func findLinks(ps []Particle, maxDist float64, mode ConnectionMode) []Link {
	switch mode {
	case NoLinks:
		return nil
	case Auto:
		if len(ps) > KDTreeThreshold {
			return kdLinks(ps, maxDist)
		}
		return pairLinks(ps, maxDist)
	case KDTree:
		return kdLinks(ps, maxDist)
	default:
		return pairLinks(ps, maxDist)
	}
}

// pairLinks compares every unordered pair once: O(N²).
func pairLinks(ps []Particle, maxDist float64) []Link {
	links := make([]Link, 0)
	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			dx := ps[i].X - ps[j].X
			dy := ps[i].Y - ps[j].Y
			d := math.Sqrt(dx*dx + dy*dy)
			if d < maxDist {
				links = append(links, Link{I: i, J: j, Dist: d})
			}
		}
	}
	return links
}

// kdLinks runs one radius query per particle against a kd-tree.
func kdLinks(ps []Particle, maxDist float64) []Link {
	if len(ps) < 2 {
		return []Link{}
	}
	pts := make(linkPoints, len(ps))
	for i, p := range ps {
		pts[i] = linkPoint{x: p.X, y: p.Y, idx: i}
	}
	queries := make(linkPoints, len(pts))
	copy(queries, pts)

	// New reorders pts in place; idx keeps the particle identity.
	tree := kdtree.New(pts, false)

	r2 := maxDist * maxDist
	links := make([]Link, 0)
	for _, q := range queries {
		keep := kdtree.NewDistKeeper(r2)
		tree.NearestSet(keep, q)
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			o := c.Comparable.(linkPoint)
			if o.idx <= q.idx {
				continue
			}
			d := math.Sqrt(c.Dist)
			if d < maxDist {
				links = append(links, Link{I: q.idx, J: o.idx, Dist: d})
			}
		}
	}
	sort.Slice(links, func(a, b int) bool {
		if links[a].I != links[b].I {
			return links[a].I < links[b].I
		}
		return links[a].J < links[b].J
	})
	return links
}

type linkPoint struct {
	x, y float64
	idx  int
}

func (p linkPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(linkPoint)
	if d == 0 {
		return p.x - q.x
	}
	return p.y - q.y
}

func (p linkPoint) Dims() int { return 2 }

// Distance is squared Euclidean, as kdtree keepers expect.
func (p linkPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(linkPoint)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

type linkPoints []linkPoint

func (p linkPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p linkPoints) Len() int                      { return len(p) }
func (p linkPoints) Pivot(d kdtree.Dim) int {
	return linkPlane{linkPoints: p, Dim: d}.Pivot()
}
func (p linkPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// linkPlane sorts points along one dimension for median partitioning.
type linkPlane struct {
	kdtree.Dim
	linkPoints
}

func (p linkPlane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.linkPoints[i].x < p.linkPoints[j].x
	}
	return p.linkPoints[i].y < p.linkPoints[j].y
}

func (p linkPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p linkPlane) Slice(start, end int) kdtree.SortSlicer {
	p.linkPoints = p.linkPoints[start:end]
	return p
}

func (p linkPlane) Swap(i, j int) {
	p.linkPoints[i], p.linkPoints[j] = p.linkPoints[j], p.linkPoints[i]
}
