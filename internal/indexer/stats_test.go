package indexer

import "testing"

func TestComputeSizeStats(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   SizeStats
	}{
		{name: "empty", values: nil, want: SizeStats{}},
		{name: "single", values: []int{4}, want: SizeStats{Min: 4, Max: 4, Mean: 4, P95: 4}},
		{name: "unsorted", values: []int{3, 1, 2}, want: SizeStats{Min: 1, Max: 3, Mean: 2, P95: 3}},
		{
			name:   "twenty values",
			values: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 100},
			want:   SizeStats{Min: 1, Max: 100, Mean: 14.5, P95: 19},
		},
		{name: "rounded mean", values: []int{1, 1, 2}, want: SizeStats{Min: 1, Max: 2, Mean: 1.33, P95: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeSizeStats(tt.values); got != tt.want {
				t.Errorf("computeSizeStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIndexVersion(t *testing.T) {
	opts := DefaultChunkOptions()
	v := IndexVersion("bge-base-en-v1.5", 768, opts)
	if len(v) != 16 {
		t.Errorf("IndexVersion() length = %d, want 16", len(v))
	}
	if v != IndexVersion("bge-base-en-v1.5", 768, opts) {
		t.Error("IndexVersion() is not stable")
	}
	if v == IndexVersion("other-model", 768, opts) {
		t.Error("IndexVersion() ignores the model")
	}
	opts.MaxSize = 1000
	if v == IndexVersion("bge-base-en-v1.5", 768, opts) {
		t.Error("IndexVersion() ignores the chunk size")
	}
}

func TestStats_LogArgs(t *testing.T) {
	args := (&Stats{Documents: 2, Records: 8}).LogArgs()
	if len(args)%2 != 0 {
		t.Fatalf("LogArgs() has %d elements, want key/value pairs", len(args))
	}
	for i := 0; i < len(args); i += 2 {
		if _, ok := args[i].(string); !ok {
			t.Errorf("LogArgs()[%d] = %v, want string key", i, args[i])
		}
	}
}
