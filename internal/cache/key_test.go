package cache

import "testing"

func TestKey_Deterministic(t *testing.T) {
	a := Key("prompt", "system", 0.3, 512)
	b := Key("prompt", "system", 0.3, 512)
	if a != b {
		t.Errorf("identical inputs produced different keys: %s vs %s", a, b)
	}
}

func TestKey_DistinctInputs(t *testing.T) {
	base := Key("prompt", "system", 0.3, 512)
	variants := map[string]string{
		"prompt":      Key("other prompt", "system", 0.3, 512),
		"system":      Key("prompt", "other system", 0.3, 512),
		"temperature": Key("prompt", "system", 0.7, 512),
		"max_tokens":  Key("prompt", "system", 0.3, 256),
	}
	for field, k := range variants {
		if k == base {
			t.Errorf("changing %s did not change the key", field)
		}
	}
}
