package codelayer

// Thresholds are the tunable numbers in the assessment decision table.
type Thresholds struct {
	// IndirectModerateConfidence is the confidence a lone indirect axiom
	// needs to raise conflict to moderate.
	IndirectModerateConfidence int `json:"indirectModerateConfidence"`
	// IndirectHighCount is how many indirect axioms make conflict high.
	IndirectHighCount int `json:"indirectHighCount"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		IndirectModerateConfidence: 60,
		IndirectHighCount:          2,
	}
}

// Assess turns fired axioms and the vector into the final verdict.
//
// Conflict is decided top down:
//
//	high      any direct axiom, or IndirectHighCount indirect axioms, or an
//	          attack/control aim on character
//	moderate  exactly one indirect axiom at IndirectModerateConfidence or more
//	low       everything else
//
// A direct axiom therefore always outranks indirect ones. Contextual and
// clean axioms never raise conflict. Only fired results are considered.
func Assess(axioms []AxiomResult, v CommunicationVector, th Thresholds) Assessment {
	var (
		direct, indirect []AxiomResult
		childEvidence    bool
		softened         bool
	)
	for _, a := range axioms {
		if !a.Fired {
			continue
		}
		switch a.Category {
		case CategoryDirect:
			direct = append(direct, a)
		case CategoryIndirect:
			indirect = append(indirect, a)
		}
		if _, ok := a.Evidence[EvidenceChild]; ok {
			childEvidence = true
		}
		if _, ok := a.Evidence[EvidenceSoftener]; ok && a.Category != CategoryClean {
			softened = true
		}
	}

	conflict := ConflictLow
	switch {
	case len(direct) > 0:
		conflict = ConflictHigh
	case th.IndirectHighCount > 0 && len(indirect) >= th.IndirectHighCount:
		conflict = ConflictHigh
	case v.Target == TargetCharacter && (v.Aim == AimAttack || v.Aim == AimControl):
		conflict = ConflictHigh
	case len(indirect) == 1 && indirect[0].Confidence >= th.IndirectModerateConfidence:
		conflict = ConflictModerate
	}

	deniability := DeniabilityLow
	// Indirect patterns are deniable by construction.
	if softened || len(indirect) > 0 {
		deniability = DeniabilityHigh
	}

	return Assessment{
		ConflictPotential: conflict,
		AttackSurface:     attackSurface(axioms, v.Target),
		ChildAsInstrument: v.Instrument == InstrumentChild || childEvidence,
		Deniability:       deniability,
		Transmit:          conflict == ConflictLow,
	}
}

// attackSurface starts with the vector's target and adds each fired axiom's
// target once. "unclear" is dropped when anything concrete is present.
func attackSurface(axioms []AxiomResult, vectorTarget Target) []Target {
	if vectorTarget == "" {
		vectorTarget = TargetUnclear
	}
	out := []Target{}
	seen := map[Target]bool{}
	add := func(t Target) {
		if t == "" || t == TargetUnclear || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
	}
	add(vectorTarget)
	for _, a := range axioms {
		if a.Fired {
			add(a.Target)
		}
	}
	if len(out) == 0 {
		out = append(out, TargetUnclear)
	}
	return out
}
