package locale

var english = Copy{
	Code: English,

	Greeting:    "Hi! I can help you book an appointment with one of our physicians. I'll ask you a few quick questions.",
	IdentityAck: "{{if .Name}}I have your name as {{.Name}}{{if .Email}} and your email as {{.Email}}{{end}}.{{else}}I have your email as {{.Email}}.{{end}}",

	AskName:     "What is your full name?",
	AskEmail:    "What email address should we send the appointment details to?",
	AskSymptoms: "Briefly, what symptoms or concerns would you like to discuss?",
	AskTime:     "When would you like the appointment? For example \"tomorrow 3pm\", \"next monday 9am\" or \"2025-03-14 10:30\".",
	AskLocale:   "Do you have a preferred language for the consultation? Type \"skip\" to leave this blank.",

	InvalidName:     "Please enter your name so the physician knows who they are meeting.",
	InvalidEmail:    "That doesn't look like a valid email address. Please try again, for example name@example.com.",
	InvalidSymptoms: "Please describe your symptoms, even briefly.",
	InvalidTime:     "I couldn't understand that time. Please include a day and a time, like \"tomorrow 3pm\".",

	Confirming: "Thank you, {{.Name}}. I'm booking your appointment for {{.Time}}...",
	Success:    "Your appointment is confirmed! Use the links below to join your consultation or add it to your calendar.",
	Failure:    "Sorry, we couldn't book your appointment right now. Please try again in a few minutes.",
	Signature:  "The Care Coordination Team",

	JoinLabel:     "Join consultation",
	CalendarLabel: "Add to calendar",

	TimeLayout: "Monday, January 2 at 3:04 PM",
	SkipWords:  []string{"skip", "none"},
}

var french = Copy{
	Code: French,

	Greeting:    "Bonjour ! Je peux vous aider à prendre rendez-vous avec l'un de nos médecins. Je vais vous poser quelques questions rapides.",
	IdentityAck: "{{if .Name}}J'ai votre nom : {{.Name}}{{if .Email}}, et votre courriel : {{.Email}}{{end}}.{{else}}J'ai votre courriel : {{.Email}}.{{end}}",

	AskName:     "Quel est votre nom complet ?",
	AskEmail:    "À quelle adresse courriel devons-nous envoyer les détails du rendez-vous ?",
	AskSymptoms: "En quelques mots, quels symptômes ou préoccupations souhaitez-vous aborder ?",
	AskTime:     "Quand souhaitez-vous le rendez-vous ? Par exemple « tomorrow 3pm » ou « 2025-03-14 10:30 ».",
	AskLocale:   "Avez-vous une langue préférée pour la consultation ? Tapez « passer » pour laisser vide.",

	InvalidName:     "Veuillez indiquer votre nom afin que le médecin sache qui il rencontre.",
	InvalidEmail:    "Cette adresse courriel ne semble pas valide. Veuillez réessayer, par exemple nom@exemple.com.",
	InvalidSymptoms: "Veuillez décrire vos symptômes, même brièvement.",
	InvalidTime:     "Je n'ai pas compris cette heure. Indiquez un jour et une heure, par exemple « 2025-03-14 10:30 ».",

	Confirming: "Merci, {{.Name}}. Je réserve votre rendez-vous pour le {{.Time}}...",
	Success:    "Votre rendez-vous est confirmé ! Utilisez les liens ci-dessous pour rejoindre la consultation ou l'ajouter à votre calendrier.",
	Failure:    "Désolé, nous n'avons pas pu réserver votre rendez-vous pour le moment. Veuillez réessayer dans quelques minutes.",
	Signature:  "L'équipe de coordination des soins",

	JoinLabel:     "Rejoindre la consultation",
	CalendarLabel: "Ajouter au calendrier",

	TimeLayout: "02/01/2006 à 15:04",
	SkipWords:  []string{"passer", "aucune", "skip"},
}
