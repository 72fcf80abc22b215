package nlu

import (
	"fmt"
	"time"
)

func taskSystemPrompt(now time.Time, zone string) string {
	return fmt.Sprintf(`Conviertes notas personales en una lista de tareas.

Momento actual: %s
Zona horaria: %s

Responde solo con un objeto JSON:
{"tasks": [{
  "title": "título corto",
  "description": "texto completo de la tarea",
  "date_text": "la expresión de fecha tal como aparece ('mañana', 'el lunes', 'el 20 de enero') o null",
  "time_text": "HH:MM o null",
  "day_part": "morning | noon | afternoon | night | null",
  "channel": "call | email | whatsapp | otro | null"
}]}

Normas:
- "a las 17" y "17h" se escriben "17:00"; "14.30" se escribe "14:30".
- Copia la expresión de fecha; no la conviertas a ISO ni añadas años.`, now.Format(time.RFC3339), zone)
}

func eventSystemPrompt(now time.Time, zone string) string {
	return fmt.Sprintf(`Extraes un único evento de agenda a partir de un texto.

Momento actual: %s
Zona horaria: %s

Responde solo con un objeto JSON:
{
  "title": "título corto",
  "description": "texto completo",
  "date_text": "expresión de fecha ('hoy', 'mañana', 'este martes') o null",
  "start_time": "HH:MM o null",
  "end_time": "HH:MM o null",
  "duration_minutes": entero, 30 si no hay end_time,
  "rrule": "regla RRULE de iCalendar sin DTSTART, o null",
  "timezone": "%s"
}

Normas:
- "de 16 a 17": start_time "16:00", end_time "17:00".
- "a las 19": start_time "19:00", end_time null, duration_minutes 30.
- "cada lunes": rrule "FREQ=WEEKLY;BYDAY=MO". "todos los días": "FREQ=DAILY".
  "cada mes el día 1": "FREQ=MONTHLY;BYMONTHDAY=1".
- Con rrule y sin fecha concreta, deja date_text en null.
- No conviertas fechas a ISO ni inventes años.`, now.Format(time.RFC3339), zone, zone)
}
