package gguf

import (
	"strconv"
	"strings"
)

// ModelInfo is the result of a rich metadata scan. Every numeric field
// defaults to 0, meaning unknown/absent rather than an error; a scan can
// succeed structurally while leaving any subset of fields unset.
type ModelInfo struct {
	// IsMoE reports whether the model appears to be a mixture-of-experts
	// model, from canonical expert keys, fuzzy key matching, or gating
	// tensors.
	IsMoE bool

	ExpertCount     int32 // experts per MoE layer
	ExpertUsedCount int32 // experts active per token
	LayerCount      int32 // total transformer layers
	MoELayerCount   int32 // layers with a gating/router tensor
	HiddenSize      int32 // embedding length
	FeedForwardSize int32 // feed-forward network length
	VocabSize       int32 // vocabulary size
}

// Tensor naming convention: "blk.<index>.<component>", where a component
// suffix of "ffn_gate_inp.weight" marks the MoE routing tensor.
const (
	blockPrefix      = "blk."
	gateTensorSuffix = "ffn_gate_inp.weight"
)

// isExpertCountKey reports whether a metadata key plausibly names the
// expert count, for files that do not use the canonical key.
func isExpertCountKey(name string) bool {
	return strings.HasSuffix(name, "expert_count") || strings.Contains(name, "num_experts")
}

// isExpertUsedCountKey reports whether a metadata key plausibly names the
// number of experts used per token.
func isExpertUsedCountKey(name string) bool {
	return strings.HasSuffix(name, "expert_used_count") || strings.Contains(name, "active_experts")
}

// isGateTensor reports whether a tensor name is an MoE routing tensor.
func isGateTensor(name string) bool {
	return strings.HasSuffix(name, gateTensorSuffix)
}

// blockIndex parses the layer index out of a "blk.<index>." tensor name.
// Names without that prefix, or with a non-numeric index, report ok=false.
func blockIndex(name string) (idx int, ok bool) {
	rest, found := strings.CutPrefix(name, blockPrefix)
	if !found {
		return 0, false
	}
	num, _, found := strings.Cut(rest, ".")
	if !found || num == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(num)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
