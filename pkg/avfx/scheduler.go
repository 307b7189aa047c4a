package avfx

// Scheduler starts timelines, either unconditionally (items) or in response
// to game triggers.
type Scheduler struct {
	Block
	ItemCount    *Count
	TriggerCount *Count
	Items        *List[*SchedulerItem]
	Triggers     *List[*SchedulerItem]
}

func NewScheduler() *Scheduler {
	s := &Scheduler{Block: newBlock("Schd")}
	s.Items = newList("Item", func() *SchedulerItem { return newSchedulerItem("Item") })
	s.Triggers = newList("Trgr", func() *SchedulerItem { return newSchedulerItem("Trgr") })
	s.ItemCount = newCount("ItCn", s.Items.Len)
	s.TriggerCount = newCount("TrCn", s.Triggers.Len)
	s.add(s.ItemCount, s.TriggerCount, s.Items, s.Triggers)
	return s
}

func (s *Scheduler) Kind() Kind { return KindScheduler }

type SchedulerItem struct {
	Block
	Enabled   *Bool
	StartTime *Int
	Timeline  *Ref
}

func newSchedulerItem(tag string) *SchedulerItem {
	it := &SchedulerItem{
		Block:     newBlock(tag),
		Enabled:   NewBool("bEna", true),
		StartTime: NewInt("StTm", 0),
		Timeline:  NewRef("TlNo", KindTimeline),
	}
	it.add(it.Enabled, it.StartTime, it.Timeline)
	return it
}
