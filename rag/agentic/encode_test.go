package agentic

import "testing"

func TestDecodeJSONPlain(t *testing.T) {
	plan, err := decodeJSON[Plan](`{"needs_decomposition": true, "reasoning": "r", "sub_queries": ["a"]}`)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !plan.NeedsDecomposition || len(plan.SubQueries) != 1 {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestDecodeJSONStripsFences(t *testing.T) {
	cases := []string{
		"```json\n{\"is_complete\": true}\n```",
		"```JSON\n{\"is_complete\": true}\n```",
		"```\n{\"is_complete\": true}\n```",
		"  {\"is_complete\": true}  ",
	}
	for _, raw := range cases {
		assessment, err := decodeJSON[Assessment](raw)
		if err != nil {
			t.Fatalf("decode %q: %v", raw, err)
		}
		if !assessment.IsComplete {
			t.Fatalf("decode %q: unexpected value %+v", raw, assessment)
		}
	}
}

func TestDecodeJSONExtractsEmbeddedObject(t *testing.T) {
	raw := `Here is my assessment: {"is_complete": true} Hope that helps.`
	assessment, err := decodeJSON[Assessment](raw)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !assessment.IsComplete {
		t.Fatalf("unexpected value %+v", assessment)
	}
}

func TestDecodeJSONRejectsProse(t *testing.T) {
	if _, err := decodeJSON[Plan]("the query looks simple to me"); err == nil {
		t.Fatalf("expected error for non-JSON output")
	}
}
