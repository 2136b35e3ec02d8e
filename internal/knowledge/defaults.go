package knowledge

// DefaultEntries is the site's built-in knowledge table.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Keywords: []string{"hello", "hi", "hey", "greetings"},
			Response: "Hello! Welcome to Azayd IT Consulting. How can I assist you today?",
		},
		{
			Keywords: []string{"services", "offer", "provide"},
			Response: "We offer a range of IT consulting services including: Custom Software Development, Cloud Solutions, Mobile App Development, and Digital Transformation. Which service would you like to know more about?",
		},
		{
			Keywords: []string{"contact", "reach", "email", "phone"},
			Response: "You can reach us via email at contact@azayd.com, call us at +91 XXXXXXXXXX, or visit our office in MG Road, Bengaluru. Would you like me to help you schedule a consultation?",
		},
		{
			Keywords: []string{"price", "cost", "pricing", "rates"},
			Response: "Our pricing varies based on project requirements and scope. We offer competitive rates and customized solutions. Would you like to schedule a consultation to discuss your specific needs?",
		},
		{
			Keywords: []string{"location", "office", "address", "where"},
			Response: "Our office is located in MG Road, Bengaluru. We serve clients across India and globally through our remote services.",
		},
		{
			Keywords: []string{"cloud", "aws", "azure", "hosting"},
			Response: "We provide comprehensive cloud solutions including migration, optimization, and management across major platforms like AWS, Azure, and Google Cloud. What specific cloud services are you interested in?",
		},
		{
			Keywords: []string{"mobile", "app", "android", "ios"},
			Response: "We develop native and cross-platform mobile applications for both iOS and Android. Our team uses the latest technologies to ensure high performance and great user experience.",
		},
		{
			Keywords: []string{"web", "website", "development"},
			Response: "We create modern, responsive websites and web applications using the latest technologies. Our solutions are scalable, secure, and optimized for performance.",
		},
		{
			Keywords: []string{"security", "secure", "protection"},
			Response: "Security is our top priority. We implement industry-best practices for cybersecurity, including encryption, secure authentication, and regular security audits.",
		},
		{
			Keywords: []string{"consultation", "meeting", "discuss"},
			Response: "We'd be happy to schedule a consultation to discuss your project. You can book a meeting through our contact page or email us at contact@azayd.com.",
		},
	}
}

var defaultBase = mustBase(DefaultEntries())

// Default returns the compiled built-in base.
func Default() *Base {
	return defaultBase
}

func mustBase(entries []Entry) *Base {
	base, err := NewBase(entries)
	if err != nil {
		panic(err)
	}
	return base
}
