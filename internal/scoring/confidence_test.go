package scoring

import "testing"

func TestScore_Bounds(t *testing.T) {
	feats := []Features{
		{},
		{Bucket: BucketConcrete, SameFile: true, UsedTypeChecker: true, TargetExported: true, NameLength: 40},
		{Bucket: BucketExternal, ImportDepth: 50},
	}
	for _, f := range feats {
		s := Score(f, Calibration{})
		if s < 0 || s > 1 {
			t.Fatalf("score out of bounds for %+v: %f", f, s)
		}
	}
}

func TestScore_BucketOrdering(t *testing.T) {
	ext := Score(Features{Bucket: BucketExternal}, Calibration{})
	fp := Score(Features{Bucket: BucketFilePlaceholder}, Calibration{})
	conc := Score(Features{Bucket: BucketConcrete}, Calibration{})
	if !(ext < fp && fp < conc) {
		t.Fatalf("expected external < placeholder < concrete, got %f %f %f", ext, fp, conc)
	}
}

func TestScore_ImportDepthNeverIncreases(t *testing.T) {
	prev := 2.0
	for depth := 0; depth <= 8; depth++ {
		s := Score(Features{Bucket: BucketConcrete, ImportDepth: depth}, Calibration{})
		if s > prev {
			t.Fatalf("score increased with importDepth %d: %f > %f", depth, s, prev)
		}
		prev = s
	}
}

func TestScore_TypeCheckerNeverDecreases(t *testing.T) {
	for _, bucket := range []TargetBucket{BucketExternal, BucketFilePlaceholder, BucketConcrete} {
		without := Score(Features{Bucket: bucket}, Calibration{})
		with := Score(Features{Bucket: bucket, UsedTypeChecker: true}, Calibration{})
		if with < without {
			t.Fatalf("type-checker boost decreased score for bucket %d", bucket)
		}
	}
}

func TestScore_NameLengthBoostCapped(t *testing.T) {
	short := Score(Features{Bucket: BucketConcrete, NameLength: 8}, Calibration{})
	long := Score(Features{Bucket: BucketConcrete, NameLength: 100}, Calibration{})
	if long != short {
		t.Fatalf("name boost should cap: %f vs %f", short, long)
	}
}

func TestScore_Calibration(t *testing.T) {
	f := Features{Bucket: BucketConcrete}
	raw := Score(f, Calibration{})
	halved := Score(f, Calibration{Multiplier: 0.5})
	if halved >= raw {
		t.Fatalf("multiplier not applied: %f >= %f", halved, raw)
	}
	floored := Score(Features{Bucket: BucketExternal, ImportDepth: 4}, Calibration{Min: 0.25})
	if floored < 0.25 {
		t.Fatalf("min override not applied: %f", floored)
	}
	capped := Score(Features{Bucket: BucketConcrete, SameFile: true}, Calibration{Max: 0.6})
	if capped > 0.6 {
		t.Fatalf("max override not applied: %f", capped)
	}
}
