package market

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/carcrafter/market-api/pkg/model"
)

// Clustering parameters. The seed is fixed so repeated calls over the same
// table return the same labels.
const (
	clusterCount     = 5
	clusterSeed      = 42
	clusterRestarts  = 10
	clusterMaxRounds = 300
	clusterTolerance = 1e-4
)

// clusterFeatures are the numeric columns the segmentation runs over.
var clusterFeatures = []struct {
	name string
	get  func(model.Listing) float64
}{
	{colYear, yearOf},
	{colKilometers, mileageOf},
	{colEngineSize, engineOf},
	{colPower, powerOf},
	{colCarAge, ageOf},
}

// ClusterListings assigns each listing one of k cluster ids using k-means over
// the standardised, mean-imputed feature columns. The listings are not
// modified; label i belongs to listings[i].
func ClusterListings(listings []model.Listing, k int) ([]int, error) {
	if k <= 0 || len(listings) < k {
		return nil, ErrTooFewListings
	}
	points := standardize(featureMatrix(listings))
	rng := rand.New(rand.NewSource(clusterSeed))

	var best []int
	bestInertia := math.Inf(1)
	for run := 0; run < clusterRestarts; run++ {
		labels, inertia := kMeans(points, k, rng)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}
	return best, nil
}

// featureMatrix returns one row per listing with missing values replaced by
// the column mean.
func featureMatrix(listings []model.Listing) [][]float64 {
	cols := make([][]float64, len(clusterFeatures))
	for j, f := range clusterFeatures {
		cols[j] = impute(column(listings, f.get))
	}
	rows := make([][]float64, len(listings))
	for i := range listings {
		row := make([]float64, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		rows[i] = row
	}
	return rows
}

// standardize scales every column to zero mean and unit population variance.
// Constant or entirely missing columns collapse to zero.
func standardize(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return rows
	}
	dims := len(rows[0])
	out := make([][]float64, len(rows))
	for i := range out {
		out[i] = make([]float64, dims)
	}
	for j := 0; j < dims; j++ {
		var sum, sq float64
		for _, r := range rows {
			sum += r[j]
		}
		mu := sum / float64(len(rows))
		for _, r := range rows {
			sq += (r[j] - mu) * (r[j] - mu)
		}
		sigma := math.Sqrt(sq / float64(len(rows)))
		if sigma == 0 || math.IsNaN(sigma) {
			sigma = 1
		}
		for i, r := range rows {
			v := (r[j] - mu) / sigma
			if math.IsNaN(v) {
				v = 0
			}
			out[i][j] = v
		}
	}
	return out
}

// kMeans runs Lloyd's algorithm from a k-means++ seeding and returns the
// labels and the within-cluster sum of squares.
func kMeans(points [][]float64, k int, rng *rand.Rand) ([]int, float64) {
	centers := seedCenters(points, k, rng)
	labels := make([]int, len(points))

	for round := 0; round < clusterMaxRounds; round++ {
		for i, p := range points {
			labels[i] = nearest(p, centers)
		}

		next := make([][]float64, k)
		sizes := make([]int, k)
		for c := range next {
			next[c] = make([]float64, len(points[0]))
		}
		for i, p := range points {
			floats.Add(next[labels[i]], p)
			sizes[labels[i]]++
		}

		shift := 0.0
		for c := range next {
			if sizes[c] == 0 {
				// keep an emptied centre where it was
				copy(next[c], centers[c])
				continue
			}
			floats.Scale(1/float64(sizes[c]), next[c])
			shift += floats.Distance(next[c], centers[c], 2)
		}
		centers = next
		if shift <= clusterTolerance {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		labels[i] = nearest(p, centers)
		d := floats.Distance(p, centers[labels[i]], 2)
		inertia += d * d
	}
	return labels, inertia
}

// seedCenters picks k initial centres with k-means++ weighting.
func seedCenters(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)
	first := points[rng.Intn(len(points))]
	centers = append(centers, append([]float64(nil), first...))

	weights := make([]float64, len(points))
	for len(centers) < k {
		total := 0.0
		for i, p := range points {
			d := floats.Distance(p, centers[nearest(p, centers)], 2)
			weights[i] = d * d
			total += weights[i]
		}

		var pick int
		if total == 0 {
			pick = rng.Intn(len(points))
		} else {
			pick = weightedPick(weights, rng.Float64()*total)
		}
		centers = append(centers, append([]float64(nil), points[pick]...))
	}
	return centers
}

// weightedPick walks the cumulative weights down from target. Rounding can
// leave target above zero after the last step; the last point with weight
// then wins, so a zero-weight point (an existing centre) is never chosen.
func weightedPick(weights []float64, target float64) int {
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		target -= w
		if target <= 0 {
			return i
		}
	}
	return last
}

func nearest(p []float64, centers [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := floats.Distance(p, center, 2); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
