package ahp_test

import (
	"math/rand"
	"testing"

	"github.com/okian/classahp/internal/domain/ahp"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildMatrix(t *testing.T) {
	Convey("Given class scores", t, func() {
		Convey("When two factors differ strongly", func() {
			m := ahp.BuildMatrix([]float64{20.0 / 15.0, 70.0 / 15.0})

			Convey("Then the pair maps through the reciprocal branch", func() {
				So(m[0][1], ShouldEqual, 1.0/5)
				So(m[1][0], ShouldEqual, 5.0)
			})
		})

		Convey("When a factor has no information", func() {
			m := ahp.BuildMatrix([]float64{2.5, 0, 0})

			Convey("Then an informative factor is maximally preferred over it", func() {
				So(m[0][1], ShouldEqual, 9.0)
				So(m[1][0], ShouldAlmostEqual, 1.0/9, 1e-15)
				So(m[0][2], ShouldEqual, 9.0)
			})

			Convey("And two uninformative factors compare as equal", func() {
				So(m[1][2], ShouldEqual, 1.0)
				So(m[2][1], ShouldEqual, 1.0)
			})
		})

		Convey("When the uninformative factor comes first", func() {
			m := ahp.BuildMatrix([]float64{0, 2.5})
			So(m[0][1], ShouldAlmostEqual, 1.0/9, 1e-15)
			So(m[1][0], ShouldEqual, 9.0)
		})

		Convey("When there is a single factor", func() {
			So(ahp.BuildMatrix([]float64{3}), ShouldResemble, ahp.Matrix{{1}})
		})

		Convey("When there are no factors", func() {
			So(ahp.BuildMatrix(nil).Size(), ShouldEqual, 0)
		})

		Convey("When scores are random", func() {
			rng := rand.New(rand.NewSource(7))
			for trial := 0; trial < 50; trial++ {
				n := 2 + rng.Intn(14)
				scores := make([]float64, n)
				for i := range scores {
					if rng.Intn(6) > 0 {
						scores[i] = 1 + rng.Float64()*8
					}
				}
				m := ahp.BuildMatrix(scores)

				for i := 0; i < n; i++ {
					So(m[i][i], ShouldEqual, 1.0)
					for j := 0; j < n; j++ {
						if i == j {
							continue
						}
						So(m[i][j]*m[j][i], ShouldAlmostEqual, 1.0, 1e-12)
						So(isSaaty(m[i][j]), ShouldBeTrue)
					}
				}
			}
		})
	})
}

func TestMatrixMulVec(t *testing.T) {
	Convey("Given a matrix and a vector", t, func() {
		m := ahp.Matrix{{1, 2}, {3, 4}}
		So(m.MulVec([]float64{1, 1}), ShouldResemble, []float64{3, 7})

		Convey("When the vector is short", func() {
			So(m.MulVec([]float64{2}), ShouldResemble, []float64{2, 6})
		})
	})
}
