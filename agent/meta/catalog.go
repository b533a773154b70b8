package meta

import (
	statex "github.com/kritsada-w/collectra/agent/state"
)

// CatalogCard returns the canonical strategy template for the memory's
// current stage. It is the deterministic floor under the strategy engine:
// used to bootstrap the first turn of a session and as the fail-closed
// fallback whenever oracle output cannot be used. Pressure rises
// monotonically with stage severity.
func CatalogCard(mem statex.MemoryState) statex.StrategyCard {
	switch mem.Stage {
	case statex.Stage0:
		return stage0Card()
	case statex.Stage1:
		return stage1Card()
	case statex.Stage2:
		return stage2Card(mem)
	case statex.Stage3:
		return stage3Card()
	default:
		return stage4Card(mem)
	}
}

func stage0Card() statex.StrategyCard {
	return statex.StrategyCard{
		StrategyID: "stage0_relationship_building",
		Stage:      statex.Stage0,
		TodayKPI: []string{
			"step1_build_trust_and_introduce_benefits",
			"step2_explain_incentive_programs",
			"step3_confirm_payment_method_and_remind_due_date",
		},
		PressureLevel: statex.PressurePolite,
		AllowedActions: []string{
			"inform_benefits",
			"offer_discount",
			"confirm_payment_method",
			"ask_preferred_contact_time",
		},
		Guardrails: []string{"no_pressure", "positive_tone_only", "focus_on_relationship"},
		Params: map[string]any{
			"conversation_flow":            "relationship_building",
			"pressure_tactics":             []string{"1_membership_upgrade", "2_limit_increase", "3_payment_discount"},
			"current_stage_pressure_level": 1,
			"focus":                        "relationship",
		},
		Notes: "Pre-due period, account in good standing. Lead with the upside of paying on time; no pressure of any kind.",
	}
}

func stage1Card() statex.StrategyCard {
	return statex.StrategyCard{
		StrategyID: "stage1_gentle_reminder",
		Stage:      statex.Stage1,
		TodayKPI: []string{
			"step1_remind_due_today_with_positivity",
			"step2_ask_payment_plan_and_ability",
			"step3_mention_benefits_of_full_payment_today",
		},
		PressureLevel: statex.PressurePolite,
		AllowedActions: []string{
			"ask_pay_today",
			"ask_payment_time",
			"offer_extension_if_eligible",
			"ask_reasons",
			"explore_fund_sources",
		},
		Guardrails: []string{"today_only_for_dpd_ge_0", "no_threats", "gentle_tone"},
		Params: map[string]any{
			"conversation_flow":            "information_gathering",
			"pressure_tactics":             []string{"3_payment_discount", "4_credit_impact_mention"},
			"current_stage_pressure_level": 3,
			"probe_ability":                true,
		},
		Notes: "Due date. Remind, ask whether today works, probe reasons and fund sources on hesitation. No hard pressure yet.",
	}
}

func stage2Card(mem statex.MemoryState) statex.StrategyCard {
	return statex.StrategyCard{
		StrategyID: "stage2_light_pressure",
		Stage:      statex.Stage2,
		TodayKPI: []string{
			"step1_ask_full_payment_today_firmly",
			"step2_explore_reasons_and_fund_sources",
			"step3_mention_credit_impact_and_blacklist_warning",
			"step4_negotiate_partial_payment_with_deadline",
		},
		PressureLevel: statex.PressurePoliteFirm,
		AllowedActions: []string{
			"ask_pay_today",
			"forced_choice_amount_time",
			"mention_credit_impact",
			"mention_blacklist_warning",
			"explore_fund_sources",
			"offer_extension_if_eligible",
			"negotiate_partial_today",
			"confirm_time",
		},
		Guardrails: []string{
			"today_only_for_dpd_ge_0",
			"no_fake_threats",
			"no_humiliation",
			"factual_consequences_only",
		},
		Params: map[string]any{
			"conversation_flow":            "convergence",
			"pressure_tactics":             []string{"4_credit_score_impact", "5_cooperation_termination_warning", "6_blacklist_warning"},
			"current_stage_pressure_level": 5,
			"allow_partial":                true,
			"allow_extension":              mem.BrokenPromises < 2,
			"credit_warning":               true,
		},
		Notes: "Light delinquency. Push full payment first, surface credit consequences, fall back to a partial amount with a committed time today.",
	}
}

func stage3Card() statex.StrategyCard {
	return statex.StrategyCard{
		StrategyID: "stage3_firm_escalation",
		Stage:      statex.Stage3,
		TodayKPI: []string{
			"step1_acknowledge_customer_obstacle_if_exists",
			"step2_force_binary_decision_today_or_never",
			"step3_escalate_blacklist_and_credit_damage_warning",
			"step4_mention_emergency_contact_involvement",
			"step5_set_final_deadline_24_48_hours",
		},
		PressureLevel: statex.PressureFirm,
		AllowedActions: []string{
			"binary_can_pay_today",
			"mention_credit_blacklist",
			"mention_emergency_contact_warning",
			"mention_workplace_contact_possibility",
			"set_hard_deadline",
			"process_notice",
			"acknowledge_obstacle_but_emphasize_solution",
		},
		Guardrails: []string{
			"today_only_for_dpd_ge_0",
			"no_fake_threats",
			"compliance_notice_only",
			"factual_consequences_only",
			"no_humiliation",
		},
		EscalationActionsAllowed: map[string]bool{
			"mention_emergency_contact": true,
		},
		Params: map[string]any{
			"conversation_flow":            "binary_convergence",
			"pressure_tactics":             []string{"6_blacklist_warning", "7_emergency_contact_warning", "8_workplace_contact_warning"},
			"current_stage_pressure_level": 7,
			"allow_partial":                false,
			"allow_extension":              false,
			"final_deadline_hours":         24,
			"escalation_ready":             true,
		},
		Notes: "Moderate delinquency or repeated refusals. Acknowledge any obstacle, then force the today-or-not decision, spell out blacklist consequences, and set a 24h deadline.",
	}
}

func stage4Card(mem statex.MemoryState) statex.StrategyCard {
	named := mem.SOPTriggerNamedEscalation && mem.ApprovalID != ""
	return statex.StrategyCard{
		StrategyID: "stage4_maximum_pressure",
		Stage:      statex.Stage4,
		TodayKPI: []string{
			"step1_final_notice_about_debt_status",
			"step2_escalate_third_party_collection_warning",
			"step3_mention_social_media_and_workplace_contact",
			"step4_process_formal_escalation_notice",
		},
		PressureLevel: statex.PressureFirm,
		AllowedActions: []string{
			"binary_can_pay_today",
			"process_notice",
			"mention_third_party_collection",
			"mention_social_media_contact_warning",
			"mention_workplace_contact_warning",
			"final_notice",
		},
		Guardrails: []string{
			"compliance_notice_only",
			"no_humiliation",
			"factual_consequences_only",
			"record_all_escalation_evidence",
		},
		EscalationActionsAllowed: map[string]bool{
			"contact_emergency":    true,
			"contact_workplace":    named,
			"social_media_mention": named,
		},
		Params: map[string]any{
			"conversation_flow":            "formal_escalation",
			"pressure_tactics":             []string{"9_social_media_contact", "10_third_party_field_collection"},
			"current_stage_pressure_level": 9,
			"allow_partial":                false,
			"allow_extension":              false,
			"full_compliance_mode":         true,
			"escalation_required":          true,
		},
		Notes: "Severe delinquency. Formal notice, third-party collection warning, final deadline. Levels 9-10 only with SOP trigger and approval on file.",
	}
}
