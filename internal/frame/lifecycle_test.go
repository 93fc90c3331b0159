package frame_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/frame"
	"github.com/san-kum/driftfield/internal/surface"
)

var _ = Describe("Animator lifecycle", func() {
	var (
		sched    *frame.Manual
		anim     *frame.Animator
		rec      *surface.Recorder
		acquired int
		released int
	)

	starfield := func(opts field.Options) (field.Simulation, error) {
		return field.NewStarfield(opts), nil
	}

	BeforeEach(func() {
		acquired, released = 0, 0
		sched = frame.NewManual(time.Unix(0, 0), time.Second/60)
		anim = frame.New(sched,
			func(w, h int) (surface.Surface, error) {
				acquired++
				rec = surface.NewRecorder(w, h)
				return rec, nil
			},
			starfield,
			field.Options{Width: 320, Height: 240, Count: 25, Seed: 9},
			frame.WithRelease(func(surface.Surface) { released++ }),
		)
	})

	AfterEach(func() {
		anim.Stop()
	})

	Context("when started", func() {
		BeforeEach(func() {
			Expect(anim.Start()).To(Succeed())
		})

		It("keeps exactly one frame pending", func() {
			Expect(sched.Pending()).To(Equal(1))
			sched.AdvanceN(10)
			Expect(sched.Pending()).To(Equal(1))
			Expect(anim.Frames()).To(BeNumerically("==", 10))
		})

		It("fades instead of clearing each frame", func() {
			sched.Advance()
			Expect(rec.Count(surface.OpClear)).To(BeZero())
			Expect(rec.Filter(surface.OpFade)).To(HaveLen(1))
			Expect(rec.Filter(surface.OpCircle)).To(HaveLen(25))
		})

		It("keeps every star inside the depth range", func() {
			sched.AdvanceN(600)
			anim.Inspect(func(sim field.Simulation, _ surface.Surface) {
				sf := sim.(*field.Starfield)
				for _, st := range sf.Stars() {
					Expect(st.Z).To(BeNumerically(">", 0))
					Expect(st.Z).To(BeNumerically("<=", sf.MaxDepth()))
				}
			})
		})
	})

	Context("when torn down", func() {
		It("cancels, releases once, and never draws again", func() {
			Expect(anim.Start()).To(Succeed())
			sched.Advance()
			ops := len(rec.Ops)

			anim.Stop()
			anim.Stop()

			Expect(released).To(Equal(1))
			Expect(sched.Pending()).To(BeZero())
			sched.AdvanceN(3)
			Expect(rec.Ops).To(HaveLen(ops))
		})

		It("can be started again with a fresh surface", func() {
			Expect(anim.Start()).To(Succeed())
			anim.Stop()
			Expect(anim.Start()).To(Succeed())
			Expect(acquired).To(Equal(2))
			Expect(anim.Running()).To(BeTrue())
		})
	})

	Context("when the viewport changes", func() {
		It("rebuilds against the new surface", func() {
			Expect(anim.Start()).To(Succeed())
			Expect(anim.Resize(640, 480)).To(Succeed())

			Expect(acquired).To(Equal(2))
			Expect(released).To(Equal(1))
			w, h := rec.Size()
			Expect(w).To(Equal(640))
			Expect(h).To(Equal(480))
			Expect(sched.Pending()).To(Equal(1))
		})
	})
})
