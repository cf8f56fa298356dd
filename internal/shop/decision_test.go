package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/ramen-tools-mcp/internal/geo"
	"github.com/ironsheep/ramen-tools-mcp/internal/poi"
	"github.com/ironsheep/ramen-tools-mcp/internal/vocab"
)

var here = geo.Coordinate{Lat: 35.6580, Lon: 139.7016}

func ramen(name string, dist float64) poi.Candidate {
	return poi.Candidate{Name: name, DistanceMeters: dist, IsRamen: true, Source: poi.SourceOverpass}
}

func other(name string, dist float64) poi.Candidate {
	return poi.Candidate{Name: name, DistanceMeters: dist, Source: poi.SourceOverpass}
}

func names(cs []poi.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

func TestTierOf(t *testing.T) {
	assert.Equal(t, TierRamenNear, TierOf(ramen("a", 50)))
	assert.Equal(t, TierOtherNear, TierOf(other("b", 0)))
	assert.Equal(t, TierRamenFar, TierOf(ramen("c", 50.01)))
	assert.Equal(t, TierOtherFar, TierOf(other("d", 4999)))
}

func TestPartition_TotalAndExclusive(t *testing.T) {
	input := []poi.Candidate{
		other("o-far-2", 900), ramen("r-near", 45), other("o-near", 12),
		ramen("r-far", 300), other("o-far-1", 60), ramen("r-near-2", 3),
		ramen("r-edge", 50), other("o-edge", 50.5),
	}

	tiers := Partition(input)

	total := 0
	seen := map[string]int{}
	for i, tier := range tiers {
		total += len(tier)
		for j, c := range tier {
			seen[c.Name]++
			assert.Equal(t, Tier(i+1), TierOf(c), "%s in wrong tier", c.Name)
			if j > 0 {
				assert.LessOrEqual(t, tier[j-1].DistanceMeters, c.DistanceMeters)
			}
		}
	}
	assert.Equal(t, len(input), total)
	for _, c := range input {
		assert.Equal(t, 1, seen[c.Name], "%s should land in exactly one tier", c.Name)
	}
	assert.Len(t, Rank(input), len(input))

	assert.Equal(t,
		[]string{"r-near-2", "r-near", "r-edge", "o-near", "r-far", "o-edge", "o-far-1", "o-far-2"},
		names(Rank(input)))
}

func TestDecide_NearestRamenWithin50m(t *testing.T) {
	d := DecideFromCandidates(here, []poi.Candidate{ramen("thirty", 30), other("forty-five", 45), ramen("twenty", 20)})

	require.True(t, d.HasName())
	assert.Equal(t, "twenty", d.Name())
	assert.Equal(t, MethodRamenWithin50m, d.Method)
	require.NotNil(t, d.DistanceMeters)
	assert.Equal(t, 20.0, *d.DistanceMeters)
	assert.Equal(t, []string{"twenty", "thirty", "forty-five"}, names(d.Candidates))
	assert.Contains(t, d.DebugTrail, "GPS: 35.658000, 139.701600")
	assert.Contains(t, d.DebugTrail, "twenty (20m)")
}

func TestDecide_OtherRestaurantBeatsDistantRamen(t *testing.T) {
	d := DecideFromCandidates(here, []poi.Candidate{ramen("far ramen", 1800), other("next door", 40)})

	assert.Equal(t, MethodOtherWithin50m, d.Method)
	assert.Equal(t, "next door", d.Name())
	assert.Equal(t, []string{"next door", "far ramen"}, names(d.Candidates))
	assert.Contains(t, d.DebugTrail, "needs confirmation")
}

func TestDecide_RamenBeyond50m(t *testing.T) {
	d := DecideFromCandidates(here, []poi.Candidate{other("cafe", 70), ramen("ramen far", 300), ramen("ramen mid", 120)})

	assert.Equal(t, MethodRamenBeyond50m, d.Method)
	assert.Equal(t, "ramen mid", d.Name())
	assert.Equal(t, []string{"ramen mid", "ramen far", "cafe"}, names(d.Candidates))
}

func TestDecide_OnlyDistantOthers(t *testing.T) {
	d := DecideFromCandidates(here, []poi.Candidate{other("b", 120), other("a", 80)})

	assert.False(t, d.HasName())
	assert.Nil(t, d.DistanceMeters)
	assert.Equal(t, MethodNeedsUserSelection, d.Method)
	assert.Equal(t, []string{"a", "b"}, names(d.Candidates))
}

func TestDecide_NoCandidates(t *testing.T) {
	d := DecideFromCandidates(here, nil)

	assert.False(t, d.HasName())
	assert.Equal(t, MethodNotFound, d.Method)
	assert.NotNil(t, d.Candidates)
	assert.Empty(t, d.Candidates)
	require.NotNil(t, d.Coordinate)
	assert.Equal(t, here, *d.Coordinate)
}

func TestDecide_KeepsTopFive(t *testing.T) {
	var cands []poi.Candidate
	for i, dist := range []float64{700, 600, 500, 400, 300, 200, 100} {
		cands = append(cands, ramen(string(rune('a'+i)), dist))
	}

	d := DecideFromCandidates(here, cands)

	assert.Len(t, d.Candidates, MaxCandidates)
	assert.Equal(t, []string{"g", "f", "e", "d", "c"}, names(d.Candidates))
	assert.Equal(t, "g", d.Name())
}

func TestDecideFromText(t *testing.T) {
	kws := vocab.Default().FallbackKeywords

	d := DecideFromText("営業中\n麺屋こころ\nらーめん", kws)
	require.True(t, d.HasName())
	assert.Equal(t, "麺屋こころ", d.Name())
	assert.Equal(t, MethodOCRFallback, d.Method)
	assert.Contains(t, d.DebugTrail, "OCR: 麺屋こころ")

	d = DecideFromText("WELCOME\nOPEN 11:00", kws)
	assert.False(t, d.HasName())
	assert.Equal(t, MethodOCROnly, d.Method)

	d = DecideFromText("", kws)
	assert.False(t, d.HasName())
	assert.Equal(t, MethodOCROnly, d.Method)
	assert.NotNil(t, d.Candidates)
}

func TestDecideFromText_InjectedKeywords(t *testing.T) {
	d := DecideFromText("noodle bar\nramen house", []string{"house"})

	assert.Equal(t, "ramen house", d.Name())
}

type radiusFinder map[int][]poi.Candidate

func (f radiusFinder) Search(_ context.Context, _ geo.Coordinate, radius int) ([]poi.Candidate, error) {
	return f[radius], nil
}

func TestDecide_SameChainTwiceInFirstRadius(t *testing.T) {
	finder := radiusFinder{500: {ramen("一蘭", 420), ramen("一蘭", 25), other("x", 100)}}

	collected := poi.NewSearcher(finder).Collect(context.Background(), here)
	d := DecideFromCandidates(here, collected)

	require.Len(t, collected, 3)
	assert.Equal(t, MethodRamenWithin50m, d.Method)
	require.NotNil(t, d.DistanceMeters)
	assert.Equal(t, 25.0, *d.DistanceMeters)
}
