package scoring

// TargetBucket classifies an edge target by how concrete it is.
type TargetBucket int

const (
	BucketExternal        TargetBucket = iota // external:<name> placeholder
	BucketFilePlaceholder                     // file:<path>:<name> or kind placeholder
	BucketConcrete                            // resolved entity ID
)

// Base scores per bucket, strictly increasing with concreteness.
const (
	baseExternal        = 0.30
	baseFilePlaceholder = 0.50
	baseConcrete        = 0.70
)

const (
	boostSameFile    = 0.15
	boostTypeChecker = 0.10
	boostExported    = 0.05
	boostPerChar     = 0.01
	boostNameCap     = 0.05
	nameLengthFloor  = 3
	penaltyPerHop    = 0.05
)

// Features are the resolution signals feeding a confidence score.
type Features struct {
	Bucket          TargetBucket
	SameFile        bool
	UsedTypeChecker bool
	TargetExported  bool
	NameLength      int
	ImportDepth     int // re-export hops traversed to reach the target
}

// Calibration rescales raw scores for offline tuning. Zero value is a
// no-op (multiplier 0 means "unset").
type Calibration struct {
	Multiplier float64 `yaml:"multiplier"`
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
}

// Score maps resolution features to a confidence in [0, 1].
func Score(f Features, cal Calibration) float64 {
	var score float64
	switch f.Bucket {
	case BucketConcrete:
		score = baseConcrete
	case BucketFilePlaceholder:
		score = baseFilePlaceholder
	default:
		score = baseExternal
	}

	if f.SameFile {
		score += boostSameFile
	}
	if f.UsedTypeChecker {
		score += boostTypeChecker
	}
	if f.TargetExported {
		score += boostExported
	}
	if extra := f.NameLength - nameLengthFloor; extra > 0 {
		boost := float64(extra) * boostPerChar
		if boost > boostNameCap {
			boost = boostNameCap
		}
		score += boost
	}

	score -= float64(f.ImportDepth) * penaltyPerHop

	if cal.Multiplier > 0 {
		score *= cal.Multiplier
	}
	if cal.Max > 0 && score > cal.Max {
		score = cal.Max
	}
	if score < cal.Min {
		score = cal.Min
	}

	return clamp(score, 0, 1)
}

// ExternalBase is the lowest base score. The default minimum-confidence
// gate is anchored just above it, so an unboosted external reference
// falls below the cut.
func ExternalBase() float64 { return baseExternal }

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
