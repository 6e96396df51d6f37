package schemadiff

import (
	"strconv"
	"testing"
)

func benchDocs(n int) (map[string]any, map[string]any) {
	build := func(mutate bool) map[string]any {
		services := make([]any, 0, n)
		for i := 0; i < n; i++ {
			cpu := 1.0
			if mutate && i%10 == 0 {
				cpu = 2.0
			}
			services = append(services, map[string]any{
				"id":   "svc-" + strconv.Itoa(i),
				"cpu":  cpu,
				"tags": []any{"a", "b"},
			})
		}
		return map[string]any{
			"envs": []any{map[string]any{"services": services}},
		}
	}
	return build(false), build(true)
}

func BenchmarkDiffPrimaryKey(b *testing.B) {
	plan, err := NewPlanner().Compile([]byte(servicesSchema))
	if err != nil {
		b.Fatal(err)
	}
	oldDoc, newDoc := benchDocs(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine := NewDiffEngine(plan)
		if ops := engine.Diff(oldDoc, newDoc); len(ops) == 0 {
			b.Fatal("expected deltas")
		}
	}
}

func BenchmarkDiffLCSScalars(b *testing.B) {
	oldArr := make([]any, 300)
	newArr := make([]any, 300)
	for i := range oldArr {
		oldArr[i] = strconv.Itoa(i)
		newArr[i] = strconv.Itoa(i)
	}
	newArr[50] = "changed"
	newArr = append(newArr[:150], newArr[151:]...)

	oldDoc := map[string]any{"arr": oldArr}
	newDoc := map[string]any{"arr": newArr}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine := NewDiffEngine(Plan{})
		if ops := engine.Diff(oldDoc, newDoc); len(ops) == 0 {
			b.Fatal("expected deltas")
		}
	}
}

func BenchmarkDeepEqualMemo(b *testing.B) {
	oldDoc, newDoc := benchDocs(200)
	cache := newEqualityCache()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		deepEqualMemo(oldDoc, newDoc, nil, cache)
	}
}

func BenchmarkFastHash(b *testing.B) {
	data := canonicalString(map[string]any{"id": "svc-1", "cpu": 1.0})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fastHash(data)
	}
}
