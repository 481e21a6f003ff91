package services

import "strings"

// FAQRule is one canned answer. A rule matches when at least MinKeywords of
// its keywords occur in the message.
type FAQRule struct {
	ID          string
	Keywords    []string
	MinKeywords int
	Response    string
	Category    string
}

// FAQRules is scanned in order and the first match wins, so more general
// rules must stay below the specific ones they overlap with.
var FAQRules = []FAQRule{
	// eligibility
	{
		ID:          "eligibility_age",
		Keywords:    []string{"age", "old", "minimum age", "can i donate", "too young", "too old"},
		MinKeywords: 1,
		Response:    "To donate blood, you must be between 18-65 years old and weigh at least 50 kg (110 lbs). Some countries allow 17-year-olds with parental consent. Do you meet these requirements?",
		Category:    "eligibility",
	},
	{
		ID:          "eligibility_weight",
		Keywords:    []string{"weight", "kg", "lbs", "heavy", "light", "minimum weight"},
		MinKeywords: 1,
		Response:    "You must weigh at least 50 kg (110 lbs) to donate blood safely. This ensures you have enough blood volume for the donation. What's your current weight?",
		Category:    "eligibility",
	},
	{
		ID:          "eligibility_health",
		Keywords:    []string{"healthy", "health condition", "disease", "sick", "medical condition", "illness"},
		MinKeywords: 1,
		Response:    "You must be in good health to donate. Certain chronic conditions may disqualify you. Please consult with a blood bank staff member about your specific health condition. They'll guide you better.",
		Category:    "eligibility",
	},

	// donation interval
	{
		ID:          "donation_interval",
		Keywords:    []string{"how often", "interval", "days between", "frequency", "again", "next donation"},
		MinKeywords: 1,
		Response:    "For whole blood donation: Wait 90 days (3 months) between donations. Platelet donations can be done every 2 weeks, and plasma every 2 weeks as well. Have you donated before?",
		Category:    "interval",
	},
	{
		ID:          "whole_blood_interval",
		Keywords:    []string{"whole blood", "90 days"},
		MinKeywords: 1,
		Response:    "Whole blood donation interval is 90 days (3 months). Your body needs this time to replenish blood cells. 🩸",
		Category:    "interval",
	},

	// temporary deferral
	{
		ID:          "fever_cold",
		Keywords:    []string{"fever", "cold", "flu", "cough", "sick", "feeling unwell"},
		MinKeywords: 1,
		Response:    "⚠️ Do NOT donate if you have fever, cold, or flu symptoms. Wait until you're completely recovered (usually 2 weeks after symptoms resolve). This protects both you and blood recipients.",
		Category:    "deferral",
	},
	{
		ID:          "vaccination",
		Keywords:    []string{"vaccine", "vaccination", "vaccinated", "covid", "flu shot", "immunization"},
		MinKeywords: 1,
		Response:    "⏸️ Deferral periods after vaccines vary:\n• COVID-19: No wait needed\n• Flu shot: No wait needed\n• Live vaccines (MMR, chickenpox): Wait 28 days\n• Other vaccines: Usually no wait\nConsult your doctor or blood bank for specifics.",
		Category:    "deferral",
	},
	{
		ID:          "pregnancy",
		Keywords:    []string{"pregnant", "pregnancy", "breastfeeding", "nursing"},
		MinKeywords: 1,
		Response:    "👶 Pregnancy & Breastfeeding:\n• During pregnancy: Wait until pregnancy ends\n• While breastfeeding: Can donate after 6 months postpartum\n• Other deferral considerations apply\nConsult your OB/GYN before donating.",
		Category:    "deferral",
	},
	{
		ID:          "tattoo_piercing",
		Keywords:    []string{"tattoo", "piercing", "body art", "ink"},
		MinKeywords: 1,
		Response:    "🎨 Tattoo/Piercing Deferral:\n• Professional facility: Usually can donate after 12 months\n• Non-professional/questionable: 12-month deferral\n• Your blood bank may request additional health screening\nAlways inform the staff about recent body modifications.",
		Category:    "deferral",
	},

	// blood groups
	{
		ID:          "blood_group_universal",
		Keywords:    []string{"o negative", "o-", "universal donor", "rare blood type"},
		MinKeywords: 1,
		Response:    "🩸 O- (O Negative) is the universal donor! Your blood can help any patient in emergencies. This makes you extremely valuable. Keep donating regularly!",
		Category:    "blood_group",
	},
	{
		ID:          "blood_group_ab_positive",
		Keywords:    []string{"ab positive", "ab+", "universal recipient"},
		MinKeywords: 1,
		Response:    "🩸 AB+ (AB Positive) is the universal recipient! You can receive blood from anyone. Regular donation helps save lives.",
		Category:    "blood_group",
	},
	{
		ID:          "blood_group_compatibility",
		Keywords:    []string{"blood group", "blood type", "compatible", "can receive", "can donate to"},
		MinKeywords: 1,
		Response:    "💉 Blood Compatibility:\n• O-: Donate to all, receive from O-\n• O+: Donate to +, receive from O\n• A-: Donate to A-, AB-, receive from A-, O-\n• A+: Donate to A+, AB+, receive from A, O\n• B-: Donate to B-, AB-, receive from B-, O-\n• B+: Donate to B+, AB+, receive from B, O\n• AB-: Donate to AB-, receive from -\n• AB+: Donate to AB+, receive from all\nWhat's your blood group?",
		Category:    "blood_group",
	},

	// safety
	{
		ID:          "side_effects",
		Keywords:    []string{"side effects", "dizzy", "faint", "nausea", "weak", "tired", "pain"},
		MinKeywords: 1,
		Response:    "⚠️ Common temporary side effects after donation:\n• Dizziness or lightheadedness\n• Fatigue (usually 24-48 hours)\n• Mild bruising at needle site\n• Nausea\n\nMitigation:\n• Rest for 10-15 minutes\n• Drink fluids & eat snacks\n• Avoid heavy exercise for 24 hours\nIf symptoms persist, contact medical staff immediately.",
		Category:    "safety",
	},
	{
		ID:          "donation_safety",
		Keywords:    []string{"safe", "safety", "sterile", "infection", "disease transmission"},
		MinKeywords: 1,
		Response:    "✅ Blood donation is very safe:\n• Sterile needle for each donation\n• Blood is tested for infectious diseases\n• Modern equipment prevents contamination\n• Medical staff monitor you throughout\nDonation saves lives with minimal risk!",
		Category:    "safety",
	},

	// benefits
	{
		ID:          "benefits_donation",
		Keywords:    []string{"benefit", "why donate", "help", "save lives", "important"},
		MinKeywords: 1,
		Response:    "💖 Why donate blood?\n• Save 3 lives with one donation\n• Help accident victims, surgery patients, cancer patients\n• Blood can't be manufactured - it's precious\n• Free health screening\n• Get a sense of purpose\nWill you join as a donor?",
		Category:    "benefits",
	},

	// before and after
	{
		ID:          "before_donation",
		Keywords:    []string{"before", "prepare", "preparation", "prior", "beforehand", "get ready"},
		MinKeywords: 1,
		Response:    "📋 Prepare for donation:\n• Sleep well (7-8 hours)\n• Eat a healthy meal 2-3 hours before\n• Stay hydrated - drink plenty of water\n• Avoid alcohol 24 hours prior\n• Wear loose, comfortable clothing\n• Bring ID and donor card if you have one\n• Avoid strenuous exercise day of donation",
		Category:    "preparation",
	},
	{
		ID:          "after_donation",
		Keywords:    []string{"after", "post", "following", "recovery", "rest", "afterwards"},
		MinKeywords: 1,
		Response:    "🏥 After donation care:\n• Rest for 10-15 minutes minimum\n• Eat snacks & drink fluids\n• Avoid heavy exercise for 24 hours\n• Don't lift heavy items\n• Keep bandage on for few hours\n• Drink extra fluids for next 48 hours\n• Take iron supplements if recommended\n• Avoid alcohol for 24 hours",
		Category:    "recovery",
	},
}

// UrgencyKeywords mark a message as an emergency regardless of how it is
// answered.
var UrgencyKeywords = []string{
	"urgent", "emergency", "accident", "critical", "immediate", "icu",
	"emergency room", "er", "ambulance", "blood loss", "severe bleeding",
	"critical condition", "life threatening", "dying", "hospital",
}

const MedicalDisclaimer = "\n\n⚕️ **Medical Disclaimer**: This information is for educational guidance only and does not replace professional medical advice. Always consult with healthcare providers for personalized medical guidance."

// MatchFAQ returns the first rule whose keywords appear in message, or nil.
// Keywords match as case-insensitive substrings.
func MatchFAQ(message string) *FAQRule {
	lower := strings.ToLower(message)
	for i := range FAQRules {
		rule := &FAQRules[i]
		matched := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matched++
			}
		}
		if matched >= rule.MinKeywords {
			return rule
		}
	}
	return nil
}
