// Package student содержит доменную модель ученика BrightClass Conference Hub.
//
// Это система записей (system of record) для карточек учеников. Пакет определяет:
//
//   - Сущности (Entities): Student, Assessment, BehavioralIncident, ParentCommunication
//   - Value Objects: SkillLevel, FrequencyLevel, Trend, LearningStyle, Status
//   - Секции карточки: PersonalInfo, AcademicProfile, BehavioralProfile,
//     Extracurricular, ParentEngagement, Goals, TeacherNotes
//   - Интерфейсы репозиториев: Repository, RecordRepository, Cache, UnitOfWork
//
// # Архитектурные принципы
//
// Пакет следует принципам Clean Architecture и DDD:
//
//  1. Нулевые внешние зависимости - только стандартная библиотека Go
//  2. Dependency Inversion - определяет интерфейсы, которые реализуются в infrastructure
//  3. Rich Domain Model - бизнес-логика инкапсулирована в сущностях
//
// # Философия проекта
//
// Карточка ученика - единственный источник правды для подготовки к
// родительским встречам. Незаполненные секции не считаются ошибкой:
// каждая секция знает своё значение по умолчанию (методы *OrDefault),
// а обязательными являются только имя, фамилия и класс.
//
// # Основные сущности
//
// Student - центральная сущность, карточка ученика:
//
//	student, err := NewStudent(NewStudentParams{
//	    ID:        "STU_A1B2C3D4",
//	    FirstName: "Emma",
//	    LastName:  "Smith",
//	    Grade:     "5",
//	    Section:   "A",
//	})
//
// Assessment - оценочная работа, первичный источник академических данных:
//
//	assessment, err := NewAssessment(NewAssessmentParams{
//	    ID:        "ASSESS_11AA22BB",
//	    StudentID: student.ID,
//	    Subject:   "mathematics",
//	    Type:      AssessmentQuiz,
//	    Score:     42,
//	    MaxScore:  50,
//	})
//
// # Пересчёт успеваемости
//
// Академическая сводка карточки пересчитывается из сырых оценок:
//
//	rollup := ComputeAcademicRollup(assessments)
//	err := student.ApplyAcademicRollup(rollup.GPA, rollup.Subjects)
//
// GPA считается как среднее по предметным средним, приведённое к шкале 4.0.
// Динамика по предмету определяется сравнением последних работ с предыдущими.
//
// # Репозитории
//
// Пакет определяет интерфейсы репозиториев (реализации в infrastructure):
//
//   - Repository: CRUD операции для карточек учеников
//   - RecordRepository: история оценок, эпизодов и общения с родителями
//   - Cache: кеширование карточек
//   - UnitOfWork: транзакционные сценарии (bulk import)
package student
