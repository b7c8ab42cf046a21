package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// likedRatingThreshold is the minimum feedback rating counted as a positive
// signal by AnalyzePreferences.
const likedRatingThreshold = 4

// Manager implements the profile operations on top of a Store. All mutating
// operations validate fully before touching the store, so a rejected call
// never leaves a partial write, and they report domain failures in the
// Result envelope rather than as errors.
type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewManager returns a manager over store. A nil logger falls back to
// slog.Default.
func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the manager's time source. Intended for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// CollectInfo merges the stated facts in info into the user's basic info,
// creating the profile on first contact. Provided fields replace stored
// values; fields absent from info are untouched. A malformed field rejects
// the whole call.
func (m *Manager) CollectInfo(ctx context.Context, userID string, info map[string]any) Result {
	if userID == "" {
		return failure("缺少用户ID")
	}
	if len(info) == 0 {
		return failure("没有可更新的用户信息")
	}

	var patch BasicInfo
	data, err := json.Marshal(info)
	if err != nil {
		return failure(fmt.Sprintf("用户信息格式错误: %v", err))
	}
	if err := json.Unmarshal(data, &patch); err != nil {
		return failure(fmt.Sprintf("用户信息格式错误: %v", err))
	}
	if patch.TravelDates != nil {
		if err := patch.TravelDates.Validate(); err != nil {
			return failure(fmt.Sprintf("旅行日期无效: %v", err))
		}
	}

	p, found, err := m.store.Get(ctx, userID)
	if err != nil {
		return m.storeFailure(ctx, "collect_info", err)
	}
	if !found {
		p = Profile{UserID: userID, CreatedAt: m.now()}
	}

	mergeBasicInfo(&p.BasicInfo, patch)
	p.UpdatedAt = m.now()

	if err := m.store.Put(ctx, p); err != nil {
		return m.storeFailure(ctx, "collect_info", err)
	}
	res := success("用户信息已更新")
	if missing := p.MissingFields(); len(missing) > 0 {
		res.Data = map[string]any{"missing_fields": missing}
	}
	return res
}

// GetProfile returns the stored profile, found=false for unknown users.
func (m *Manager) GetProfile(ctx context.Context, userID string) (Profile, bool, error) {
	return m.store.Get(ctx, userID)
}

// AddTripHistory appends a past-trip record. History is append-only.
func (m *Manager) AddTripHistory(ctx context.Context, userID string, rec TripRecord) Result {
	if userID == "" {
		return failure("缺少用户ID")
	}
	if rec.Destination == "" {
		return failure("旅行记录缺少目的地")
	}

	p, found, err := m.store.Get(ctx, userID)
	if err != nil {
		return m.storeFailure(ctx, "add_trip_history", err)
	}
	if !found {
		p = Profile{UserID: userID, CreatedAt: m.now()}
	}

	rec.RecordedAt = m.now()
	p.TravelHistory = append(p.TravelHistory, rec)
	p.UpdatedAt = m.now()

	if err := m.store.Put(ctx, p); err != nil {
		return m.storeFailure(ctx, "add_trip_history", err)
	}
	return success("旅行记录已保存")
}

// CollectFeedback appends a rating-and-comment record. Ratings are 1 to 5.
func (m *Manager) CollectFeedback(ctx context.Context, userID string, fb Feedback) Result {
	if userID == "" {
		return failure("缺少用户ID")
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return failure(fmt.Sprintf("评分 %d 超出范围，应为1到5", fb.Rating))
	}

	p, found, err := m.store.Get(ctx, userID)
	if err != nil {
		return m.storeFailure(ctx, "collect_feedback", err)
	}
	if !found {
		p = Profile{UserID: userID, CreatedAt: m.now()}
	}

	fb.RecordedAt = m.now()
	p.Feedback = append(p.Feedback, fb)
	p.UpdatedAt = m.now()

	if err := m.store.Put(ctx, p); err != nil {
		return m.storeFailure(ctx, "collect_feedback", err)
	}
	return success("反馈已记录")
}

// AnalyzePreferences derives the items the user liked from their feedback
// history. An item counts as liked when any of its ratings reached the
// threshold.
func (m *Manager) AnalyzePreferences(ctx context.Context, userID string) Result {
	p, found, err := m.store.Get(ctx, userID)
	if err != nil {
		return m.storeFailure(ctx, "analyze_preferences", err)
	}
	if !found {
		return failure("用户档案不存在")
	}
	if len(p.Feedback) == 0 {
		return failure("暂无反馈记录，无法分析偏好")
	}

	likedSet := map[string]bool{}
	var total int
	for _, fb := range p.Feedback {
		total += fb.Rating
		if fb.Rating >= likedRatingThreshold && fb.Item != "" {
			likedSet[fb.Item] = true
		}
	}
	liked := make([]string, 0, len(likedSet))
	for item := range likedSet {
		liked = append(liked, item)
	}
	sort.Strings(liked)

	res := success("偏好分析完成")
	res.Data = map[string]any{
		"liked_items":    liked,
		"feedback_count": len(p.Feedback),
		"average_rating": float64(total) / float64(len(p.Feedback)),
	}
	return res
}

// UpdatePreferences merges per-category preference lists into the profile.
// Items are appended to their category without duplicates.
func (m *Manager) UpdatePreferences(ctx context.Context, userID string, prefs map[string][]string) Result {
	if userID == "" {
		return failure("缺少用户ID")
	}
	if len(prefs) == 0 {
		return failure("没有可更新的偏好")
	}

	p, found, err := m.store.Get(ctx, userID)
	if err != nil {
		return m.storeFailure(ctx, "update_preferences", err)
	}
	if !found {
		p = Profile{UserID: userID, CreatedAt: m.now()}
	}

	if p.BasicInfo.Preferences == nil {
		p.BasicInfo.Preferences = make(map[string][]string)
	}
	for category, items := range prefs {
		existing := p.BasicInfo.Preferences[category]
		for _, item := range items {
			if !containsString(existing, item) {
				existing = append(existing, item)
			}
		}
		p.BasicInfo.Preferences[category] = existing
	}
	p.UpdatedAt = m.now()

	if err := m.store.Put(ctx, p); err != nil {
		return m.storeFailure(ctx, "update_preferences", err)
	}
	return success("偏好已更新")
}

func (m *Manager) storeFailure(ctx context.Context, op string, err error) Result {
	m.logger.ErrorContext(ctx, "profile store failure", "op", op, "error", err)
	return failure("存储错误，请稍后重试")
}

// mergeBasicInfo copies every non-zero field of patch into dst.
func mergeBasicInfo(dst *BasicInfo, patch BasicInfo) {
	if patch.Destination != "" {
		dst.Destination = patch.Destination
	}
	if patch.TravelDates != nil {
		dst.TravelDates = patch.TravelDates
	}
	if len(patch.DietaryRestrictions) > 0 {
		dst.DietaryRestrictions = patch.DietaryRestrictions
	}
	if len(patch.Preferences) > 0 {
		if dst.Preferences == nil {
			dst.Preferences = make(map[string][]string)
		}
		for category, items := range patch.Preferences {
			dst.Preferences[category] = items
		}
	}
	if patch.Budget != "" {
		dst.Budget = patch.Budget
	}
	if patch.TravelStyle != "" {
		dst.TravelStyle = patch.TravelStyle
	}
	if patch.Transportation != "" {
		dst.Transportation = patch.Transportation
	}
	if patch.SpecialNeeds != "" {
		dst.SpecialNeeds = patch.SpecialNeeds
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
