package policy

import (
	"reflect"
	"testing"
)

const fieldDoc = `# Field Operations Manual

General background text.

## Datapoint Naming Conventions

- ` + "`*_AI_Assistant`" + ` - Datapoints designated for AI manipulation
- ` + "`*_Setpoint`" + ` - Operator setpoints, manual control only
- ` + "`*_DEMO_*`" + ` - Demonstration datapoints, open for AI manipulation

## Alarm Handling

- ` + "`*_Alarm_*`" + ` - Datapoints designated for AI manipulation
`

func TestExtract_SectionScoping(t *testing.T) {
	rs := Extract(fieldDoc)

	want := []string{"*_AI_Assistant", "*_DEMO_*"}
	if got := rs.Patterns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract patterns = %v, want %v", got, want)
	}
}

func TestExtract_SectionReopens(t *testing.T) {
	doc := `## Datapoint Conventions
` + "`*_AI_Assistant`" + ` - designated for AI manipulation
## Other
` + "`*_Ignored_*`" + ` - designated for AI manipulation
## Datapoint Conventions continued
` + "`*_DEMO_*`" + ` - designated for AI manipulation
`
	want := []string{"*_AI_Assistant", "*_DEMO_*"}
	if got := Extract(doc).Patterns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract patterns = %v, want %v", got, want)
	}
}

func TestExtract_RequiresGrantPhrase(t *testing.T) {
	doc := `## Datapoint Naming Conventions
- ` + "`*_Safety_*`" + ` - never to be written automatically
- ` + "`*_AI_Assistant`" + ` - Datapoints designated for AI manipulation
`
	want := []string{"*_AI_Assistant"}
	if got := Extract(doc).Patterns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract patterns = %v, want %v", got, want)
	}
}

func TestExtract_GrantPhraseCaseInsensitive(t *testing.T) {
	doc := `## Datapoint Conventions
- ` + "`*_DEMO_*`" + ` - open for AI MANIPULATION
`
	want := []string{"*_DEMO_*"}
	if got := Extract(doc).Patterns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract patterns = %v, want %v", got, want)
	}
}

func TestExtract_DiscardsTokensWithoutWildcard(t *testing.T) {
	doc := `## Datapoint Conventions
- ` + "`Boiler1_AI_Assistant`" + ` and ` + "`*_AI_Assistant`" + ` - designated for AI manipulation
`
	want := []string{"*_AI_Assistant"}
	if got := Extract(doc).Patterns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract patterns = %v, want %v", got, want)
	}
}

func TestExtract_MultipleTokensPerLine(t *testing.T) {
	doc := `## Datapoint Conventions
- ` + "`*_AI_Assistant`" + `, ` + "`*_DEMO_*`" + ` - designated for AI manipulation
`
	want := []string{"*_AI_Assistant", "*_DEMO_*"}
	if got := Extract(doc).Patterns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract patterns = %v, want %v", got, want)
	}
}

func TestExtract_NoSectionYieldsEmptySet(t *testing.T) {
	doc := "# Just a manual\n\n`*_AI_Assistant` - designated for AI manipulation\n"
	if got := Extract(doc).Len(); got != 0 {
		t.Errorf("patterns outside a relevant section should be ignored, got %d", got)
	}
	if got := Extract("").Len(); got != 0 {
		t.Errorf("empty document should yield empty set, got %d", got)
	}
}

func TestExtract_SectionTitleIsCaseSensitive(t *testing.T) {
	doc := `## datapoint naming conventions
- ` + "`*_AI_Assistant`" + ` - designated for AI manipulation
`
	if got := Extract(doc).Len(); got != 0 {
		t.Errorf("lowercase section title should not open the section, got %d patterns", got)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	first := Extract(fieldDoc).Patterns()
	second := Extract(fieldDoc).Patterns()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs: %v vs %v", first, second)
	}
}

func TestExtract_KeepsDuplicates(t *testing.T) {
	doc := `## Datapoint Conventions
- ` + "`*_DEMO_*`" + ` - designated for AI manipulation
- ` + "`*_DEMO_*`" + ` - also designated for AI manipulation
`
	want := []string{"*_DEMO_*", "*_DEMO_*"}
	if got := Extract(doc).Patterns(); !reflect.DeepEqual(got, want) {
		t.Errorf("Extract patterns = %v, want %v (dedup is merge's job)", got, want)
	}
}
