package domain

import "math/rand/v2"

// Canned responses for request classes that need no model generation.
// All sets are user-facing Vietnamese strings.

var OutDomainResponses = []string{
	"Xin lỗi, tôi không thể trả lời các câu hỏi nằm ngoài lĩnh vực hành chính công, hãy thử lại với câu hỏi khác nhé.",
	"Câu hỏi này không có trong dữ liệu của tôi, bạn hãy thử với câu hỏi khác liên quan đến hành chính công nhé.",
	"Xin lỗi, câu bạn hỏi không liên quan đến dịch vụ hành chính công, hãy hỏi lại câu hỏi khác nhé.",
	"Rất tiếc, tôi chỉ hỗ trợ các câu hỏi liên quan đến hành chính công. Bạn có thể thử lại với câu hỏi khác nhé.",
	"Câu hỏi của bạn hiện không nằm trong phạm vi thông tin hành chính công mà tôi được đào tạo. Vui lòng đặt lại câu hỏi khác nhé.",
	"Xin lỗi, nội dung bạn hỏi vượt ra ngoài lĩnh vực hành chính công. Hãy thử lại với câu hỏi phù hợp hơn nhé.",
	"Tôi chưa có dữ liệu cho câu hỏi này. Bạn hãy thử với câu hỏi khác thuộc chủ đề hành chính công nhé.",
	"Câu hỏi của bạn không thuộc lĩnh vực hành chính công, nên tôi không thể hỗ trợ được. Mời bạn đặt lại câu hỏi khác nhé.",
	"Rất tiếc, tôi không có thông tin để trả lời câu hỏi ngoài lĩnh vực hành chính công. Vui lòng hỏi nội dung khác nhé.",
	"Thông tin bạn cần không nằm trong phạm vi hành chính công. Mong bạn thử lại với câu hỏi phù hợp hơn.",
}

var GreetingResponses = []string{
	"Xin chào bạn, tôi có thể giúp gì cho bạn?",
	"Chào bạn, tôi có thể hỗ trợ gì cho bạn hôm nay?",
	"Xin chào! Bạn cần tôi giúp gì hôm nay?",
	"Chào bạn! Tôi luôn sẵn sàng hỗ trợ bạn.",
	"Xin chào, bạn đang cần hỗ trợ gì trong lĩnh vực hành chính công?",
	"Chào bạn, tôi ở đây để hỗ trợ bạn. Bạn cần giúp gì nào?",
	"Xin chào! Bạn muốn tìm hiểu thông tin gì hôm nay?",
	"Rất vui được gặp bạn! Tôi có thể giúp gì cho bạn không?",
	"Chào mừng bạn! Hãy cho tôi biết bạn cần gì nhé.",
	"Xin chào bạn, tôi luôn sẵn sàng hỗ trợ các vấn đề liên quan đến hành chính công.",
}

var ByeResponses = []string{
	"Tạm biệt bạn, hẹn gặp lại lần sau!",
	"Cảm ơn bạn đã sử dụng dịch vụ của chúng tôi. Tạm biệt!",
	"Chúc bạn một ngày tốt lành! Tạm biệt!",
	"Rất vui được hỗ trợ bạn. Hẹn gặp lại!",
	"Tạm biệt nhé! Chúc bạn mọi điều tốt đẹp.",
	"Hẹn gặp lại bạn trong lần hỗ trợ tiếp theo. Tạm biệt!",
	"Cảm ơn bạn đã tin tưởng sử dụng dịch vụ. Chào tạm biệt!",
	"Mong sớm được gặp lại bạn. Chúc bạn một ngày hiệu quả!",
	"Tạm biệt bạn, chúc mọi việc của bạn diễn ra suôn sẻ!",
	"Cảm ơn bạn đã ghé thăm. Hẹn gặp lại bạn sau nhé!",
}

var NotSupportedLanguageResponses = []string{
	"Xin lỗi, hiện tại tôi chỉ hỗ trợ tiếng Việt và tiếng Anh. Bạn vui lòng đặt lại câu hỏi bằng một trong hai ngôn ngữ này nhé.",
	"Sorry, I currently support only Vietnamese and English. Please ask your question again in one of these languages.",
	"Rất tiếc, tôi chưa hiểu được ngôn ngữ bạn đang dùng. Bạn hãy hỏi lại bằng tiếng Việt hoặc tiếng Anh nhé.",
	"Ngôn ngữ của câu hỏi chưa được hỗ trợ. Vui lòng sử dụng tiếng Việt hoặc tiếng Anh để tôi có thể giúp bạn.",
	"Sorry, your question seems to be in a language I cannot handle yet. Vietnamese and English are supported.",
}

// ResponsePicker selects one canned response from a set. Injectable so tests
// can pin the selection.
type ResponsePicker func(set []string) string

// RandomResponse draws uniformly from the set.
func RandomResponse(set []string) string {
	if len(set) == 0 {
		return ""
	}
	return set[rand.IntN(len(set))]
}

// ResponsesForTopic returns the canned set for a non-administration topic.
func ResponsesForTopic(topic Topic) []string {
	switch topic {
	case TopicGreeting:
		return GreetingResponses
	case TopicBye:
		return ByeResponses
	default:
		return OutDomainResponses
	}
}
