package explainer

import "strings"

// topicResponses maps recognized off-topic subjects to guidance that steers
// the user back to the dataset.
var topicResponses = []struct {
	topic    string
	response string
}{
	{"mapreduce", "MapReduce is a programming model for processing large datasets across distributed systems. However, I'm designed to help you analyze your sales data! Try asking me about your orders, customers, or revenue trends."},
	{"machine learning", "Machine Learning involves algorithms that learn from data to make predictions. I'd love to help you discover patterns in your sales data instead! Ask me about customer trends or product performance."},
	{"artificial intelligence", "AI involves creating systems that can perform tasks requiring human intelligence. Speaking of intelligence, let me help you gain insights from your data! Try asking about sales by region or top customers."},
	{"blockchain", "Blockchain is a distributed ledger technology. While that's interesting, I'm here to help you understand your business data! Ask me about revenue trends or order patterns."},
	{"cloud computing", "Cloud computing delivers computing services over the internet. I'm focused on helping you analyze your local sales data though! Try asking about customer segments or product sales."},
}

// HandleOffTopic answers a query that is outside the dataset's scope with
// guidance back toward data analysis.
func HandleOffTopic(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))

	for _, entry := range topicResponses {
		if strings.Contains(q, entry.topic) {
			return entry.response
		}
	}

	if containsAny(q, "what is", "what are", "define", "explain") {
		if containsAny(q, "technology", "programming", "software", "algorithm", "system") {
			return "That's an interesting technical question! However, I'm specialized in analyzing sales and business data. I can help you explore your orders, customers, revenue trends, and create visualizations. Try asking me something like 'Show me sales by region' or 'What are the top products?'"
		}
		return "I'm a data analysis assistant focused on helping you understand your sales data. While I can't answer general questions, I'd be happy to help you analyze your orders, customers, products, or revenue! Try asking about trends, totals, or specific data insights."
	}

	if containsAny(q, "how to", "how do", "tutorial", "guide") {
		return "I'm designed to help you analyze your business data rather than provide tutorials. I can show you insights about your sales, customers, and products through natural language queries. Try asking 'How many orders this month?' or 'Show me top customers by revenue'."
	}

	if containsAny(q, "weather", "news", "sports", "entertainment") {
		return "I don't have access to external information like weather or news. I'm specialized in analyzing your sales database! I can help you discover trends in your orders, analyze customer behavior, or create charts. Ask me about your business data instead!"
	}

	return "I'm a data analysis copilot designed to help you understand your sales data. I can answer questions about your orders, customers, products, and revenue using natural language. Try asking something like:\n\n• 'Show me total sales by region'\n• 'What are the top 5 products?'\n• 'How many customers do we have?'\n• 'Create a chart of monthly revenue'\n\nWhat would you like to know about your data?"
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
