package triage

import (
	"fmt"
	"strings"
)

// Classification is the outcome of running the acuity waterfall over a
// presentation. RecommendedTime is the tier's fixed service-level target.
type Classification struct {
	Priority        PriorityLevel `json:"priority"`
	Reasoning       string        `json:"reasoning"`
	RecommendedTime string        `json:"recommended_time"`
}

// vitalRule is one threshold clause of a tier. Match must treat missing
// measurements as non-matching, never as zero.
type vitalRule struct {
	Label string
	Match func(v *VitalSigns) bool
}

// tierRule is one ordinal level of the classification waterfall. A tier
// matches when any of its clauses matches (complaint substring, vital
// threshold, consciousness, or discriminator substring).
type tierRule struct {
	Priority        PriorityLevel
	Label           string
	RecommendedTime string
	Complaints      []string
	Vitals          []vitalRule
	Consciousness   []Consciousness
	Discriminators  []string
}

// Rule tables carry the source system's Portuguese terms alongside English
// equivalents. Matching is lowercase substring containment; no stemming or
// fuzzy matching.
var tiers = []tierRule{
	{
		Priority:        PriorityRed,
		Label:           "Emergência",
		RecommendedTime: "Imediato",
		Complaints: []string{
			"parada cardiorrespiratória", "parada cardiorrespiratoria", "parada cardíaca", "parada cardiaca",
			"parada respiratória", "parada respiratoria", "cardiac arrest", "respiratory arrest",
			"asfixia", "asphyxia", "engasgo", "choking",
			"obstrução de via aérea", "obstrucao de via aerea", "airway obstruction",
			"choque", "shock",
			"coma",
			"convulsão ativa", "convulsao ativa", "convulsionando", "active seizure",
			"hemorragia grave", "severe hemorrhage",
			"traumatismo craniano grave", "tce grave", "severe head trauma",
			"intoxicação grave", "intoxicacao grave", "envenenamento grave", "severe poisoning",
		},
		Vitals: []vitalRule{
			{"FR < 8/min", func(v *VitalSigns) bool { return v.RespiratoryRate != nil && *v.RespiratoryRate < 8 }},
			{"FR > 35/min", func(v *VitalSigns) bool { return v.RespiratoryRate != nil && *v.RespiratoryRate > 35 }},
			{"FC < 40/min", func(v *VitalSigns) bool { return v.HeartRate != nil && *v.HeartRate < 40 }},
			{"FC > 150/min", func(v *VitalSigns) bool { return v.HeartRate != nil && *v.HeartRate > 150 }},
			{"PA sistólica < 80", func(v *VitalSigns) bool { return v.BloodPressureSys != nil && *v.BloodPressureSys < 80 }},
			{"SpO2 < 90%", func(v *VitalSigns) bool { return v.OxygenSaturation != nil && *v.OxygenSaturation < 90 }},
		},
		Consciousness: []Consciousness{ConsciousnessUnconscious},
		Discriminators: []string{
			"não respira", "nao respira", "not breathing",
			"sem resposta", "irresponsivo", "unresponsive",
			"sem pulso", "pulseless",
			"hemorragia arterial", "arterial hemorrhage",
		},
	},
	{
		Priority:        PriorityOrange,
		Label:           "Muito Urgente",
		RecommendedTime: "10 minutos",
		Complaints: []string{
			"dor torácica intensa", "dor toracica intensa", "dor no peito intensa", "severe chest pain",
			"dispneia intensa", "falta de ar intensa", "severe dyspnea",
			"síncope", "sincope", "desmaio", "syncope",
			"convulsão recente", "convulsao recente", "recent seizure",
			"hemorragia moderada", "moderate hemorrhage",
			"queimadura extensa", "extensive burn",
			"trauma abdominal", "abdominal trauma",
			"fratura exposta", "open fracture",
			"intoxicação moderada", "intoxicacao moderada", "moderate poisoning",
		},
		Vitals: []vitalRule{
			{"FR < 12/min", func(v *VitalSigns) bool { return v.RespiratoryRate != nil && *v.RespiratoryRate < 12 }},
			{"FR > 30/min", func(v *VitalSigns) bool { return v.RespiratoryRate != nil && *v.RespiratoryRate > 30 }},
			{"FC < 50/min", func(v *VitalSigns) bool { return v.HeartRate != nil && *v.HeartRate < 50 }},
			{"FC > 130/min", func(v *VitalSigns) bool { return v.HeartRate != nil && *v.HeartRate > 130 }},
			// Hyperpyrexia only; a fever between 38.5 and 39.5 classifies urgent, not very urgent.
			{"temperatura > 39.5°C", func(v *VitalSigns) bool { return v.Temperature != nil && *v.Temperature > 39.5 }},
			{"dor >= 8/10", func(v *VitalSigns) bool { return v.PainScale != nil && *v.PainScale >= 8 }},
		},
		Discriminators: []string{
			"dor intensa", "severe pain",
			"dispneia moderada", "moderate dyspnea",
			"hemorragia moderada", "moderate hemorrhage",
			"queimadura", "burn",
			"fratura", "fracture",
		},
	},
	{
		Priority:        PriorityYellow,
		Label:           "Urgente",
		RecommendedTime: "1 hora",
		Complaints: []string{
			"dor abdominal intensa", "severe abdominal pain",
			"vômito com sangue", "vomito com sangue", "hematêmese", "hematemese", "bloody vomit",
			"diarreia com sangue", "bloody diarrhea",
			"cefaleia intensa", "dor de cabeça intensa", "dor de cabeca intensa", "severe headache",
			"dor lombar intensa", "severe back pain",
			"edema importante", "inchaço importante", "inchaco importante", "significant swelling",
			"ferida infectada", "infected wound",
		},
		Vitals: []vitalRule{
			{"temperatura > 38.5°C", func(v *VitalSigns) bool { return v.Temperature != nil && *v.Temperature > 38.5 }},
			{"dor >= 6/10", func(v *VitalSigns) bool { return v.PainScale != nil && *v.PainScale >= 6 }},
		},
	},
	{
		Priority:        PriorityGreen,
		Label:           "Pouco Urgente",
		RecommendedTime: "2-4 horas",
		Complaints: []string{
			"dor de cabeça", "dor de cabeca", "cefaleia", "headache",
			"dor abdominal leve", "mild abdominal pain",
			"tosse", "cough",
			"febre", "fever",
			"náusea", "nausea", "enjoo",
			"vômito", "vomito", "vomiting",
			"diarreia", "diarrhea",
			"dor muscular", "muscle pain",
			"ferida superficial", "superficial wound",
		},
	},
}

// blueTier is the default when no tier matches.
var blueTier = tierRule{
	Priority:        PriorityBlue,
	Label:           "Não Urgente",
	RecommendedTime: "4-24 horas",
}

// Classify runs the presentation through the waterfall, most urgent tier
// first, and returns the first tier whose clauses match. It is pure and
// total: every well-formed input classifies, absent vitals simply never
// match, and no input produces an error.
func Classify(input PresentationInput) Classification {
	complaint := strings.ToLower(input.ChiefComplaint)

	for _, tier := range tiers {
		if reason, ok := matchTier(tier, input, complaint); ok {
			return Classification{
				Priority:        tier.Priority,
				Reasoning:       fmt.Sprintf("%s (%s)", tier.Label, reason),
				RecommendedTime: tier.RecommendedTime,
			}
		}
	}

	return Classification{
		Priority:        blueTier.Priority,
		Reasoning:       blueTier.Label,
		RecommendedTime: blueTier.RecommendedTime,
	}
}

func matchTier(tier tierRule, input PresentationInput, complaint string) (string, bool) {
	for _, term := range tier.Complaints {
		if strings.Contains(complaint, term) {
			return "queixa: " + term, true
		}
	}

	if input.VitalSigns != nil {
		for _, rule := range tier.Vitals {
			if rule.Match(input.VitalSigns) {
				return "sinal vital: " + rule.Label, true
			}
		}
	}

	for _, level := range tier.Consciousness {
		if input.Consciousness == level {
			return "consciência: " + string(level), true
		}
	}

	for _, term := range tier.Discriminators {
		for _, d := range input.Discriminators {
			if strings.Contains(strings.ToLower(d), term) {
				return "discriminador: " + term, true
			}
		}
	}

	return "", false
}
