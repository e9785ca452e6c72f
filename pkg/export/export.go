// Package export renders participant data as CSV for download.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/cfstudy/checklist-backend/pkg/progress"
	"github.com/cfstudy/checklist-backend/pkg/studyplan"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

func formatTimestamp(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).Format("Jan 2 03:04 PM")
}

func dateTag() string {
	return time.Now().Format("20060102")
}

// ParticipantReportFilename names the per-participant download.
func ParticipantReportFilename(code string) string {
	return fmt.Sprintf("CF_%s_%s.csv", code, dateTag())
}

func StudyTableFilename() string {
	return fmt.Sprintf("cf_study_table_%s.csv", dateTag())
}

// ParticipantReport builds the single-participant report: contact block,
// then one section per session listing every plan step with its completion
// state, timestamp and note.
func ParticipantReport(p *types.Participant) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"CF Study — Participant Report"},
		{"Generated", time.Now().Format("1/2/2006, 3:04:05 PM")},
		{""},
		{"Code", p.Code},
		{"Name", p.FirstName + " " + p.LastName},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Group", p.Group},
		{"Status", p.Status},
		{"Registered", formatTimestamp(p.RegisteredAt)},
		{"RA", p.RAInitials},
	}
	rows = append(rows, sessionSection(p, 1)...)
	rows = append(rows, sessionSection(p, 2)...)
	rows = append(rows, []string{""}, []string{"Notes", p.Notes})

	_ = w.WriteAll(rows)
	w.Flush()
	return buf.Bytes()
}

func sessionSection(p *types.Participant, session int) [][]string {
	schedule := p.ScheduleForSession(session)
	records := p.StepsForSession(session)

	rows := [][]string{
		{""},
		{fmt.Sprintf("── SESSION %d ──", session)},
		{"Date", schedule.Date},
		{"Time", schedule.Time},
		{"HRV Device", schedule.HRVDeviceID},
		{"Step ID", "Step Name", "Done", "Timestamp", "Note"},
	}
	for _, s := range studyplan.SessionSteps(session, p.Group) {
		rec, done := records[s.ID]
		doneLabel := "No"
		ts := ""
		note := ""
		if done {
			doneLabel = "Yes"
			ts = formatTimestamp(rec.CompletedAt)
			note = rec.Note
		}
		rows = append(rows, []string{s.ID, s.Label, doneLabel, ts, note})
	}
	return rows
}

// StudyTable builds the study-wide flat table, one row per participant.
func StudyTable(participants []types.Participant) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{
		"Code", "First Name", "Last Name", "Email", "Phone", "Group", "Status",
		"Registered", "RA",
		"S1 Date", "S1 Time", "S1 HRV Device", "S1 Done", "S1 Total", "S1 %",
		"S2 Date", "S2 Time", "S2 HRV Device", "S2 Done", "S2 Total", "S2 %",
		"Notes",
	})
	for i := range participants {
		p := &participants[i]
		p1 := progress.SessionProgress(p, 1)
		p2 := progress.SessionProgress(p, 2)
		_ = w.Write([]string{
			p.Code, p.FirstName, p.LastName, p.Email, p.Phone, p.Group, p.Status,
			formatTimestamp(p.RegisteredAt), p.RAInitials,
			p.Session1.Date, p.Session1.Time, p.Session1.HRVDeviceID,
			strconv.Itoa(p1.Done), strconv.Itoa(p1.Total), strconv.Itoa(p1.Percent),
			p.Session2.Date, p.Session2.Time, p.Session2.HRVDeviceID,
			strconv.Itoa(p2.Done), strconv.Itoa(p2.Total), strconv.Itoa(p2.Percent),
			p.Notes,
		})
	}
	w.Flush()
	return buf.Bytes()
}
