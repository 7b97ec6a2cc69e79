package score

import (
	"fmt"
	"regexp"
	"strings"
)

// Input is the scorable slice of a role record. JD may be empty: short
// or unfetchable postings still get a title-only score for triage.
type Input struct {
	Title        string
	Company      string
	JD           string
	LocationRaw  string
	WorkModeHint string
}

// Result is the deterministic scoring output. Same Input and floor in,
// same Result out.
type Result struct {
	FitScore        int
	FitNotes        string
	DealbreakerFlag bool
	LocationUSOK    string // TRUE / FALSE
	CompOK          string // TRUE / FALSE / UNKNOWN
	WorkModeFinal   string // REMOTE / HYBRID / REMOTE_OR_HYBRID / IN_PERSON / UNKNOWN
	RankKey         string
}

// Title seniority and function signals. All run against the lowercased
// title, so the patterns stay lowercase.
var (
	reJunior       = regexp.MustCompile(`\b(associate|analyst|coordinator|specialist)\b`)
	reManager      = regexp.MustCompile(`\b(manager)\b`)
	reSrManager    = regexp.MustCompile(`\b(senior manager|sr\.?\s*manager)\b`)
	reLeadTitle    = regexp.MustCompile(`\b(lead|principal)\b`)
	reHeadDirector = regexp.MustCompile(`\b(head of|director|vp|vice president)\b`)
)

type titleSignal struct {
	re   *regexp.Regexp
	pts  int
	note string
}

var posTitle = []titleSignal{
	{regexp.MustCompile(`biz\s?ops|business operations|business ops`), 18, "BizOps/Business Ops title"},
	{regexp.MustCompile(`strategy operations|strategic operations|strategy & operations|strategy and operations`), 18, "Strategy Ops title"},
	{regexp.MustCompile(`\bhead of\b.*(strategy|business operations|bizops|operations)`), 16, "Head of Strategy/BizOps/Operations"},
	{regexp.MustCompile(`chief of staff`), 12, "Chief of Staff"},
	{regexp.MustCompile(`\bgeneral manager\b|\bgm\b`), 10, "GM"},
	{regexp.MustCompile(`strategic finance|corp(orate)? strategy|corporate development|biz dev|business development`), 8, "Adjacent strategic function"},
}

var negTitle = []titleSignal{
	{regexp.MustCompile(`\baccountant\b|accounting|controller|tax|audit`), -25, "Accounting/Controller"},
	{regexp.MustCompile(`payroll|ap\b|ar\b|billing specialist`), -20, "Back-office ops"},
	{regexp.MustCompile(`\bhr\b|talent|recruit(ing|er)`), -15, "HR/Talent"},
	{regexp.MustCompile(`sales development|sdr|bdr`), -15, "SDR/BDR"},
}

var (
	reNonASCII = regexp.MustCompile(`[^\x00-\x7F]`)
	reNonUS    = regexp.MustCompile(`location\s*[:\-]\s*(london|uk|england|europe|berlin|paris|dublin|india|singapore|australia|toronto|vancouver)|based\s+in\s+(our\s+)?(london|berlin|paris|dublin|toronto|sydney)\s|must\s+be\s+(based|located)\s+in\s+(the\s+)?(uk|eu|europe)|headquarters?\s+in\s+(london|berlin|paris)|role\s+is\s+in\s+(london|berlin|paris)`)

	reRemote   = regexp.MustCompile(`remote-first|fully remote|100% remote|\bremote\b`)
	reHybrid   = regexp.MustCompile(`hybrid`)
	reInPerson = regexp.MustCompile(`on[- ]site|onsite|in[- ]office|in office|must be in office|five days a week|5 days a week`)

	// Salary figures like "180k" or "$225K"; only three-digit values in
	// the 150-299 band count as real comp signals.
	reMoney = regexp.MustCompile(`\$?\b(1[5-9]\d|2\d\d)\s?[kK]\b`)
	reDigit = regexp.MustCompile(`[0-9]+`)
)

// Role scores one record with the v0 heuristic. compFloorK is the
// salary floor in thousands; maxima below it are penalized.
func Role(in Input, compFloorK int) Result {
	if compFloorK <= 0 {
		compFloorK = 180
	}
	t := strings.ToLower(in.Title)
	text := strings.ToLower(in.JD + " " + in.LocationRaw)

	score := 50
	var notes []string

	// Seniority, title-based.
	if reJunior.MatchString(t) {
		score -= 22
		notes = append(notes, "-22 Junior seniority (associate/analyst/etc.)")
	} else if reManager.MatchString(t) && !reSrManager.MatchString(t) {
		score -= 8
		notes = append(notes, "-8 Manager (non-senior) title")
	}
	if reSrManager.MatchString(t) {
		score += 10
		notes = append(notes, "+10 Senior Manager title")
	}
	if reLeadTitle.MatchString(t) {
		score += 8
		notes = append(notes, "+8 Lead/Principal title")
	}
	if reHeadDirector.MatchString(t) {
		score += 14
		notes = append(notes, "+14 Head/Director/VP title")
	}

	for _, sig := range posTitle {
		if sig.re.MatchString(t) {
			score += sig.pts
			notes = append(notes, fmt.Sprintf("+%d %s", sig.pts, sig.note))
		}
	}
	for _, sig := range negTitle {
		if sig.re.MatchString(t) {
			score += sig.pts
			notes = append(notes, fmt.Sprintf("%d %s", sig.pts, sig.note))
		}
	}

	// Location gate: US by default, flipped only on explicit signals.
	locationUSOK := "TRUE"

	if len(reNonASCII.FindAllString(in.Title, -1)) >= 3 {
		score -= 35
		notes = append(notes, "-35 Non-English / non-ASCII title")
		locationUSOK = "FALSE"
	}

	if reNonUS.MatchString(text) {
		locationUSOK = "FALSE"
		score -= 40
		notes = append(notes, "-40 Non-US location required")
	}

	// Work mode, hint plus JD text.
	workModeFinal := "UNKNOWN"
	work := strings.ToLower(in.WorkModeHint) + " " + text
	if reRemote.MatchString(work) {
		workModeFinal = "REMOTE"
		score += 6
		notes = append(notes, "+6 Remote")
	}
	if reHybrid.MatchString(work) {
		if workModeFinal == "REMOTE" {
			workModeFinal = "REMOTE_OR_HYBRID"
		} else {
			workModeFinal = "HYBRID"
		}
		score += 2
		notes = append(notes, "+2 Hybrid")
	}
	if reInPerson.MatchString(work) {
		workModeFinal = "IN_PERSON"
		score -= 6
		notes = append(notes, "-6 In-person requirement")
	}

	// Comp heuristic: max "###k" figure found in the JD, if any.
	compOK := "UNKNOWN"
	if matches := reMoney.FindAllString(in.JD, -1); len(matches) > 0 {
		maxK := 0
		for _, m := range matches {
			if d := reDigit.FindString(m); d != "" {
				n := 0
				fmt.Sscanf(d, "%d", &n)
				if n > maxK {
					maxK = n
				}
			}
		}
		if maxK > 0 {
			if maxK >= compFloorK {
				compOK = "TRUE"
			} else {
				compOK = "FALSE"
			}
			notes = append(notes, fmt.Sprintf("Comp max~%dk => %s", maxK, compOK))
			if compOK == "FALSE" {
				score -= 15
			}
		}
	}

	dealbreaker := locationUSOK == "FALSE"

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	if len(notes) > 6 {
		notes = notes[:6]
	}

	return Result{
		FitScore:        score,
		FitNotes:        strings.Join(notes, " | "),
		DealbreakerFlag: dealbreaker,
		LocationUSOK:    locationUSOK,
		CompOK:          compOK,
		WorkModeFinal:   workModeFinal,
		RankKey:         fmt.Sprintf("%03d-%s-%s", score, strings.ToLower(in.Company), t),
	}
}
