package dialog

import (
	"fmt"

	"github.com/riverline/collections-platform/internal/nlu"
)

// messageKey identifies one agent utterance in the catalog.
type messageKey string

const (
	msgVerify          messageKey = "VERIFY"
	msgVerifyFail      messageKey = "VERIFY_FAIL"
	msgThanksAndAsk    messageKey = "THANKS_AND_ASK"
	msgAskDue          messageKey = "ASK_DUE"
	msgAskPlan         messageKey = "ASK_PLAN"
	msgHardshipPlan    messageKey = "HARDSHIP_PLAN"
	msgPreviewPTP      messageKey = "PREVIEW_PTP"
	msgConfirmPTP      messageKey = "CONFIRM_PTP"
	msgCallback        messageKey = "CALLBACK"
	msgAskAgain        messageKey = "ASK_AGAIN"
	msgPlanAgain       messageKey = "PLAN_AGAIN"
	msgPlanMissingDate messageKey = "PLAN_MISSING_DATE"
	msgClosing         messageKey = "CLOSING"
)

// templateArgs carries the positional values templates interpolate.
// Not every template uses every field.
type templateArgs struct {
	Name   string
	Amount int64
	Date   string
	Due    int64
}

type template func(a templateArgs) string

// Catalog is the immutable per-language message table plus the tone
// prefixes. It is owned by the Machine rather than living as mutable
// package state so the machine stays independently testable.
type Catalog struct {
	messages map[messageKey]map[string]template
	prefixes map[string]tonePrefixes
}

type tonePrefixes struct {
	empathetic string
	urgent     string
}

// DefaultCatalog returns the built-in English/Hindi/Telugu catalog.
// Tamil is an accepted declared language with no table of its own; it
// falls back to English like any unknown language.
func DefaultCatalog() Catalog {
	return Catalog{
		messages: map[messageKey]map[string]template{
			msgVerify: {
				"en": func(a templateArgs) string { return fmt.Sprintf("Am I speaking to %s?", a.Name) },
				"hi": func(a templateArgs) string { return fmt.Sprintf("क्या मैं %s जी से बात कर रहा हूँ?", a.Name) },
				"te": func(a templateArgs) string { return fmt.Sprintf("నేను %s గారితో మాట్లాడుతున్నానా?", a.Name) },
			},
			msgVerifyFail: {
				"en": func(a templateArgs) string {
					return fmt.Sprintf("Please confirm your name is %s to continue.", a.Name)
				},
				"hi": func(a templateArgs) string { return fmt.Sprintf("कृपया पुष्टि करें कि आपका नाम %s जी है।", a.Name) },
				"te": func(a templateArgs) string {
					return fmt.Sprintf("దయచేసి మీ పేరు %s గారు అని నిర్ధారించండి.", a.Name)
				},
			},
			msgThanksAndAsk: {
				"en": func(a templateArgs) string {
					return fmt.Sprintf("Thanks %s. You have ₹%d due. Are you able to pay now or would you like a payment plan?", a.Name, a.Due)
				},
				"hi": func(a templateArgs) string {
					return fmt.Sprintf("धन्यवाद %s जी। आपका ₹%d बकाया है। क्या आप अभी भुगतान कर सकते हैं या आप भुगतान योजना चाहेंगे?", a.Name, a.Due)
				},
				"te": func(a templateArgs) string {
					return fmt.Sprintf("ధన్యవాదాలు %s గారు. మీకు ₹%d బకాయి ఉంది. మీరు ఇప్పుడే చెల్లించగలరా లేదా మీకు పేమెంట్ ప్లాన్ కావాలా?", a.Name, a.Due)
				},
			},
			msgAskDue: {
				"en": func(a templateArgs) string {
					return fmt.Sprintf("Your total due is ₹%d. Would you like to pay now or set a date?", a.Due)
				},
				"hi": func(a templateArgs) string {
					return fmt.Sprintf("आपका कुल बकाया ₹%d है। क्या आप अभी भुगतान करना चाहेंगे या कोई तारीख तय करना चाहेंगे?", a.Due)
				},
				"te": func(a templateArgs) string {
					return fmt.Sprintf("మీ మొత్తం బకాయి ₹%d. మీరు ఇప్పుడే చెల్లించాలనుకుంటున్నారా లేదా తేదీని సెట్ చేయాలనుకుంటున్నారా?", a.Due)
				},
			},
			msgAskPlan: {
				"en": func(a templateArgs) string {
					return `Sure. What amount and what date works for you? You can say for example "₹1200 next Friday".`
				},
				"hi": func(a templateArgs) string {
					return `ज़रूर। आपके लिए कौन सी राशि और कौन सी तारीख सही रहेगी? उदाहरण के लिए, आप "₹1200 अगले शुक्रवार" कह सकते हैं।`
				},
				"te": func(a templateArgs) string {
					return `తప్పకుండా. మీకు ఏ మొత్తం మరియు ఏ తేదీ సరిపోతుంది? ఉదాహరణకు, "₹1200 వచ్చే శుక్రవారం" అని చెప్పవచ్చు.`
				},
			},
			msgHardshipPlan: {
				"en": func(a templateArgs) string {
					return "Thanks for sharing. We can set a smaller amount and a later date. Tell me an amount and a date."
				},
				"hi": func(a templateArgs) string {
					return "बताने के लिए धन्यवाद। हम कम राशि और बाद की तारीख तय कर सकते हैं। मुझे एक राशि और एक तारीख बताएं।"
				},
				"te": func(a templateArgs) string {
					return "చెప్పినందుకు ధన్యవాదాలు. మనం తక్కువ మొత్తం మరియు తర్వాతి తేదీని సెట్ చేసుకోవచ్చు. దయచేసి మొత్తం మరియు తేదీ చెప్పండి."
				},
			},
			msgPreviewPTP: {
				"en": func(a templateArgs) string {
					return fmt.Sprintf("Okay. I noted ₹%d by %s. Shall I confirm this as a Promise-to-Pay?", a.Amount, a.Date)
				},
				"hi": func(a templateArgs) string {
					return fmt.Sprintf("ठीक है। मैंने ₹%d, %s तक नोट कर लिया है। क्या मैं इसे Promise-to-Pay के रूप में पक्का करूँ?", a.Amount, a.Date)
				},
				"te": func(a templateArgs) string {
					return fmt.Sprintf("సరే. నేను ₹%d, %s నాటికి నోట్ చేసుకున్నాను. దీనిని Promise-to-Pay గా నిర్ధారించాలా?", a.Amount, a.Date)
				},
			},
			msgConfirmPTP: {
				"en": func(a templateArgs) string {
					return fmt.Sprintf("Done. I have recorded a promise of ₹%d by %s. I will send a WhatsApp confirmation.", a.Amount, a.Date)
				},
				"hi": func(a templateArgs) string {
					return fmt.Sprintf("हो गया। मैंने ₹%d, %s तक का वादा दर्ज कर लिया है। मैं आपको WhatsApp पर पुष्टि भेज दूँगा।", a.Amount, a.Date)
				},
				"te": func(a templateArgs) string {
					return fmt.Sprintf("పూర్తయింది. నేను ₹%d, %s నాటికి వాగ్దానాన్ని రికార్డ్ చేసాను. నేను WhatsApp నిర్ధారణ పంపుతాను.", a.Amount, a.Date)
				},
			},
			msgCallback: {
				"en": func(a templateArgs) string { return "Sure. I will schedule a callback. What time suits you?" },
				"hi": func(a templateArgs) string {
					return "ज़रूर। मैं एक कॉलबैक शेड्यूल कर दूँगा। आपके लिए कौन सा समय सही रहेगा?"
				},
				"te": func(a templateArgs) string {
					return "తప్పకుండా. నేను కాల్‌బ్యాక్ షెడ్యూల్ చేస్తాను. మీకు ఏ సమయం అనుకూలంగా ఉంటుంది?"
				},
			},
			msgAskAgain: {
				"en": func(a templateArgs) string {
					return `Please tell me the amount and the date (for example "₹1000 on 10/11").`
				},
				"hi": func(a templateArgs) string {
					return `कृपया मुझे राशि और तारीख बताएं (उदाहरण के लिए "₹1000, 10/11 को")।`
				},
				"te": func(a templateArgs) string {
					return `దయచేసి నాకు మొత్తం మరియు తేదీ చెప్పండి (ఉదాహరణకు "₹1000, 10/11 న")।`
				},
			},
			msgPlanAgain: {
				"en": func(a templateArgs) string {
					return "Please confirm the amount and the date so I can record your promise."
				},
				"hi": func(a templateArgs) string {
					return "कृपया राशि और तारीख की पुष्टि करें ताकि मैं आपका वादा दर्ज कर सकूं।"
				},
				"te": func(a templateArgs) string {
					return "దయచేసి మీ వాగ్దానాన్ని రికార్డ్ చేయడానికి మొత్తం మరియు తేదీని నిర్ధారించండి."
				},
			},
			msgPlanMissingDate: {
				"en": func(a templateArgs) string { return "Sorry, I missed that. What date can you pay?" },
				"hi": func(a templateArgs) string {
					return "माफ़ कीजिए, मैं सुन नहीं पाया। आप किस तारीख को भुगतान कर सकते हैं?"
				},
				"te": func(a templateArgs) string {
					return "క్షమించండి, నాకు అర్థం కాలేదు. మీరు ఏ తేదీన చెల్లించగలరు?"
				},
			},
			msgClosing: {
				"en": func(a templateArgs) string {
					return "I’ve recorded this. You’ll receive a WhatsApp summary. Thank you."
				},
				"hi": func(a templateArgs) string {
					return "मैंने इसे दर्ज कर लिया है। आपको WhatsApp पर सारांश मिल जाएगा। धन्यवाद।"
				},
				"te": func(a templateArgs) string {
					return "నేను దీనిని రికార్డ్ చేసాను. మీరు WhatsApp సారాంశం అందుకుంటారు. ధన్యవాదాలు."
				},
			},
		},
		prefixes: map[string]tonePrefixes{
			"en": {empathetic: "I understand. ", urgent: "Important: "},
			"hi": {empathetic: "मैं समझता हूँ। ", urgent: "ज़रूरी सूचना: "},
			"te": {empathetic: "నాకు అర్థం అయింది. ", urgent: "ముఖ్య గమనిక: "},
		},
	}
}

// render produces the final localized utterance: the template for the
// borrower's language (English fallback) plus a tone/sentiment prefix.
// Urgent tone wins over the empathetic prefix when both would apply.
func (c Catalog) render(key messageKey, lang string, tone Tone, sentiment nlu.Sentiment, a templateArgs) string {
	byLang, ok := c.messages[key]
	if !ok {
		return ""
	}
	tmpl, ok := byLang[lang]
	if !ok {
		lang = "en"
		tmpl = byLang["en"]
	}

	prefix := ""
	p := c.prefixes[lang]
	if tone == ToneEmpathetic || sentiment == nlu.SentimentNegative {
		prefix = p.empathetic
	}
	if tone == ToneUrgent {
		prefix = p.urgent
	}
	return prefix + tmpl(a)
}
